package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"emotional-diary/internal/models"
	"emotional-diary/internal/repository"
	"emotional-diary/internal/stats"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

// NewEntryMessage is sent to the author after an entry is saved
const NewEntryMessage = "You added a new entry to your diary!"

// EntryStore is the part of the repository entry handling needs
type EntryStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateEntry(ctx context.Context, entry *models.DiaryEntry) error
	FindEntries(ctx context.Context, filter repository.EntryFilter) ([]*models.DiaryEntry, error)
}

// CreateEntryInput is the client supplied part of a new entry
type CreateEntryInput struct {
	Date         string   `json:"date"`
	EmotionScore *int     `json:"emotion_score"`
	Description  *string  `json:"description"`
	Activities   []string `json:"activities"`
}

// CreateEntryResult bundles the saved entry with its immediate feedback
type CreateEntryResult struct {
	Entry       *models.DiaryEntry `json:"entry"`
	MoodSummary stats.MoodSummary  `json:"moodSummary"`
	Reflection  Reflection         `json:"reflection"`
}

// EntryService handles writing and listing diary entries
type EntryService struct {
	repo     EntryStore
	notifier Notifier
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewEntryService creates a new entry service
func NewEntryService(repo EntryStore, notifier Notifier, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *EntryService {
	return &EntryService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  metricsCollector,
		now:      time.Now,
	}
}

// Create validates and stores an entry for userID, then notifies the user
func (s *EntryService) Create(ctx context.Context, userID int64, in CreateEntryInput) (*CreateEntryResult, error) {
	entry, err := s.buildEntry(userID, in)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	result := &CreateEntryResult{
		Entry:       entry,
		MoodSummary: stats.Summarize([]*models.DiaryEntry{entry}),
		Reflection:  Reflect(entry),
	}

	// a failed notification does not undo a saved entry
	if err := s.notifier.Notify(ctx, user, NewEntryMessage); err != nil {
		s.logger.Warn(ctx, "[ENTRY_NOTIFY_FAILED] Could not notify user", logging.Fields{
			"user_id":  userID,
			"entry_id": entry.ID,
			"error":    err.Error(),
		})
	}

	s.logger.Info(ctx, "[ENTRY_CREATED] Diary entry saved", logging.Fields{
		"entry_id": entry.ID,
		"date":     entry.Date.String(),
	})

	return result, nil
}

// ListMonth returns the user's entries in one calendar month, oldest first
func (s *EntryService) ListMonth(ctx context.Context, userID int64, month, year int) ([]*models.DiaryEntry, error) {
	window, err := stats.MonthWindow(month, year)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.FindEntries(ctx, repository.EntryFilter{
		UserID:    userID,
		StartDate: &window.Start,
		EndDate:   &window.End,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return entries, nil
}

func (s *EntryService) buildEntry(userID int64, in CreateEntryInput) (*models.DiaryEntry, error) {
	if in.EmotionScore == nil {
		return nil, models.NewValidationError(models.ErrInvalidEntry, "emotion_score", "")
	}
	score := *in.EmotionScore
	if score < models.MinMoodScore || score > models.MaxMoodScore {
		return nil, models.NewValidationError(models.ErrInvalidEntry, "emotion_score", strconv.Itoa(score))
	}

	var date time.Time
	if raw := strings.TrimSpace(in.Date); raw == "" {
		now := s.now().UTC()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return nil, models.NewValidationError(models.ErrInvalidDate, "date", in.Date)
		}
		date = parsed
	}

	activities := models.Activities{}
	for _, a := range in.Activities {
		if a = strings.TrimSpace(a); a != "" {
			activities = append(activities, a)
		}
	}

	return &models.DiaryEntry{
		UserID:      userID,
		Date:        models.NewEntryDate(date),
		MoodScore:   &score,
		Description: in.Description,
		Activities:  activities,
	}, nil
}
