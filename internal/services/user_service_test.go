package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotional-diary/internal/models"
)

func TestUserService_Register(t *testing.T) {
	repo := newFakeRepo()
	s := NewUserService(repo, testLogger())

	user, err := s.Register(context.Background(), RegisterInput{Username: " luis ", Email: "Luis@Example.com"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "luis", user.Username)
	assert.Equal(t, "luis@example.com", user.Email)

	got, err := s.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestUserService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.c"}},
		{"missing email", RegisterInput{Username: "a"}},
		{"malformed email", RegisterInput{Username: "a", Email: "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUserService(newFakeRepo(), testLogger()).Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, models.ErrInvalidUser)
		})
	}
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	s := NewUserService(newFakeRepo(), testLogger())

	_, err := s.Register(context.Background(), RegisterInput{Username: "ana2", Email: "ana@example.com"})
	var conflict *models.ConflictError
	assert.True(t, errors.As(err, &conflict))
}
