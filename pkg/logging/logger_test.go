package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line map[string]interface{}
		require.NoError(t, dec.Decode(&line))
		out = append(out, line)
	}
	return out
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "diary-test", "0.0.1", WarnLevel)

	ctx := context.Background()
	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", Fields{"k": "v"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["message"])
	assert.Equal(t, "v", lines[0]["k"])
	assert.Equal(t, "diary-test", lines[0]["service"])
}

func TestStructuredLogger_ContextValuesAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "diary-test", "0.0.1", DebugLevel)

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), 42)
	logger.Error(ctx, "[TEST_ERROR] boom", Fields{"stage": "unit"}, errors.New("db down"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, float64(42), lines[0]["user_id"])
	assert.Equal(t, "db down", lines[0]["error"])
	assert.Equal(t, "error", lines[0]["level"])
	assert.Contains(t, lines[0], "caller")
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "diary-test", "0.0.1", DebugLevel)

	logger.WithFields(Fields{"component": "stats", "k": "base"}).Info(context.Background(), "merged", Fields{"k": "override"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "stats", lines[0]["component"])
	assert.Equal(t, "override", lines[0]["k"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"unknown": InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
