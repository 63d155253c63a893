package services

import (
	"context"
	"strings"

	"emotional-diary/internal/models"
	"emotional-diary/pkg/logging"
)

// UserStore is the part of the repository user handling needs
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// RegisterInput is the client supplied part of a new user
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserService handles user registration and lookup
type UserService struct {
	repo   UserStore
	logger *logging.StructuredLogger
}

// NewUserService creates a new user service
func NewUserService(repo UserStore, logger *logging.StructuredLogger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register creates a user. A taken email surfaces as *models.ConflictError.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" {
		return nil, models.NewValidationError(models.ErrInvalidUser, "username", in.Username)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, models.NewValidationError(models.ErrInvalidUser, "email", in.Email)
	}

	user := &models.User{Username: username, Email: email}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[USER_REGISTERED] User registered", logging.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return user, nil
}

// Get looks a user up by ID
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}
