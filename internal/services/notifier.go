package services

import (
	"context"

	"emotional-diary/internal/models"
	"emotional-diary/pkg/logging"
)

// Notifier delivers a message to a user
type Notifier interface {
	Notify(ctx context.Context, user *models.User, message string) error
}

// LogNotifier writes notifications to the structured log instead of delivering them
type LogNotifier struct {
	logger *logging.ContextLogger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *logging.StructuredLogger) *LogNotifier {
	return &LogNotifier{logger: logger.WithFields(logging.Fields{"channel": "log"})}
}

// Notify logs the notification
func (n *LogNotifier) Notify(ctx context.Context, user *models.User, message string) error {
	n.logger.Info(ctx, "[NOTIFY] Notification sent", logging.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"message": message,
	})
	return nil
}
