package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotional-diary/internal/models"
	"emotional-diary/pkg/logging"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger("diary-test", "test", logging.InfoLevel)
	logger.SetOutput(&buf)

	user := &models.User{ID: 7, Email: "ana@example.com"}
	require.NoError(t, NewLogNotifier(logger).Notify(context.Background(), user, NewEntryMessage))

	out := buf.String()
	assert.Contains(t, out, "[NOTIFY] Notification sent")
	assert.Contains(t, out, `"channel":"log"`)
	assert.Contains(t, out, `"user_id":7`)
}
