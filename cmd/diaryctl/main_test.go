package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotional-diary/internal/models"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DIARY_DB_DRIVER", "sqlite")
	t.Setenv("DIARY_DB_SQLITE_PATH", filepath.Join(dir, "diary.db"))
	t.Setenv("DIARY_DB_MAX_OPEN_CONNS", "1")
	t.Setenv("DIARY_DB_MAX_IDLE_CONNS", "1")
	t.Setenv("DIARY_LOG_LEVEL", "error")
	return dir
}

// run executes diaryctl with args and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestDiaryctl_EndToEnd(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migration completed successfully")

	out, err = run(t, "users", "create", "--username", "ana", "--email", "Ana@Example.com")
	require.NoError(t, err)
	var user struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "ana@example.com", user.Email)

	data := "# june\n2024-06-01\t5\tfirst\n2024-06-30\t7\n\nnot-a-date\t4\n"
	file := filepath.Join(dir, "entries.tsv")
	require.NoError(t, os.WriteFile(file, []byte(data), 0o600))

	out, err = run(t, "import", "--user", "1", "--file", file, "--batch-size", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "IMPORT COMPLETE")
	assert.Contains(t, out, "Successful Records: 2")
	assert.Contains(t, out, "Failed Records:     1")

	out, err = run(t, "report", "monthly", "--user", "1", "--month", "6", "--year", "2024")
	require.NoError(t, err)
	var monthly struct {
		TotalDays      int    `json:"total_days"`
		AverageEmotion string `json:"average_emotion"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &monthly))
	assert.Equal(t, 2, monthly.TotalDays)
	assert.Equal(t, "6.00", monthly.AverageEmotion)

	out, err = run(t, "report", "yearly", "--user", "1", "--year", "2024")
	require.NoError(t, err)
	var yearly struct {
		TotalEntries int     `json:"totalEntries"`
		AverageMood  float64 `json:"averageMood"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &yearly))
	assert.Equal(t, 2, yearly.TotalEntries)
	assert.Equal(t, 6.0, yearly.AverageMood)

	out, err = run(t, "migrate", "--direction", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Running down migration")
}

func TestDiaryctl_FlagErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad direction", []string{"migrate", "--direction", "sideways"}},
		{"import without file", []string{"import", "--user", "1"}},
		{"report without user", []string{"report", "yearly", "--year", "2024"}},
		{"month out of range", []string{"report", "monthly", "--user", "1", "--month", "13", "--year", "2024"}},
		{"bad days", []string{"report", "trends", "--user", "1", "--days", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDiaryctl_ReportValidatesBeforeConnecting(t *testing.T) {
	dir := setupEnv(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"month out of range", []string{"report", "monthly", "--user", "1", "--month", "13", "--year", "2024"}, models.ErrInvalidDate},
		{"year not numeric", []string{"report", "monthly", "--user", "1", "--month", "6", "--year", "20x4"}, models.ErrInvalidDate},
		{"year too early", []string{"report", "yearly", "--user", "1", "--year", "1800"}, models.ErrInvalidYear},
		{"days not positive", []string{"report", "trends", "--user", "1", "--days", "-3"}, models.ErrInvalidDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "err = %v, want %v", err, tt.want)
		})
	}

	// sqlite creates the file on first connection
	_, statErr := os.Stat(filepath.Join(dir, "diary.db"))
	assert.True(t, os.IsNotExist(statErr), "database was opened before validation")
}
