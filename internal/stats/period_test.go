package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotional-diary/internal/models"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month, year, want int
	}{
		{2, 2024, 29},
		{2, 2023, 28},
		{2, 1900, 28},
		{2, 2000, 29},
		{1, 2024, 31},
		{4, 2024, 30},
		{12, 2024, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.month, tt.year); got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.month, tt.year, got, tt.want)
		}
	}
}

func TestMonthWindow(t *testing.T) {
	w, err := MonthWindow(2, 2024)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), w.End)

	w, err = MonthWindow(2, 2023)
	require.NoError(t, err)
	assert.Equal(t, 28, w.End.Day())

	for _, bad := range [][2]int{{0, 2024}, {13, 2024}, {6, 1899}, {-1, 2024}} {
		_, err := MonthWindow(bad[0], bad[1])
		assert.ErrorIs(t, err, models.ErrInvalidDate, "month=%d year=%d", bad[0], bad[1])
	}
}

func TestYearWindow(t *testing.T) {
	w, err := YearWindow(2025)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), w.End)

	_, err = YearWindow(1800)
	assert.ErrorIs(t, err, models.ErrInvalidYear)

	_, err = YearWindow(MinYear)
	assert.NoError(t, err)
}

func TestTrendWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	w, err := TrendWindow(now, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), w.Start)
	assert.True(t, w.End.IsZero())

	_, err = TrendWindow(now, 0)
	assert.ErrorIs(t, err, models.ErrInvalidDays)
}

func TestTrendWindow_UsesUTCDay(t *testing.T) {
	// 22:00 in UTC-5 is already the next day in UTC
	eastern := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 10, 14, 22, 0, 0, 0, eastern)

	w, err := TrendWindow(now, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestParseMonthPeriod(t *testing.T) {
	tests := []struct {
		name        string
		month, year string
		wantMonth   int
		wantYear    int
		wantErr     bool
	}{
		{"valid", "6", "2024", 6, 2024, false},
		{"padded", " 02 ", "2024", 2, 2024, false},
		{"month 13", "13", "2024", 0, 0, true},
		{"month 0", "0", "2024", 0, 0, true},
		{"year 1899", "6", "1899", 0, 0, true},
		{"non numeric month", "invalid", "2024", 0, 0, true},
		{"trailing garbage", "6abc", "2024", 0, 0, true},
		{"empty year", "6", "", 0, 0, true},
		{"fractional", "6.5", "2024", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, year, err := ParseMonthPeriod(tt.month, tt.year)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, models.ErrInvalidDate))
				assert.Equal(t, "Invalid date", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonth, month)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestParseYear(t *testing.T) {
	year, err := ParseYear("2025")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)

	for _, bad := range []string{"1800", "abc", "", "20x5"} {
		_, err := ParseYear(bad)
		assert.ErrorIs(t, err, models.ErrInvalidYear, "input %q", bad)
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTrendDays, days)

	days, err = ParseDays("7")
	require.NoError(t, err)
	assert.Equal(t, 7, days)

	days, err = ParseDays("3650")
	require.NoError(t, err)
	assert.Equal(t, 3650, days)

	for _, bad := range []string{"0", "-5", "week"} {
		_, err := ParseDays(bad)
		assert.ErrorIs(t, err, models.ErrInvalidDays, "input %q", bad)
	}
}
