package stats

import (
	"strconv"
	"strings"
	"time"

	"emotional-diary/internal/models"
)

// MinYear is the earliest year a report can be requested for
const MinYear = 1900

// DefaultTrendDays is the trend window used when the caller gives none
const DefaultTrendDays = 30

// Window is an inclusive range of calendar days. A zero End means open-ended.
type Window struct {
	Start time.Time
	End   time.Time
}

// DaysInMonth accounts for leap years
func DaysInMonth(month, year int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidateMonth rejects month outside 1..12 or year before MinYear
func ValidateMonth(month, year int) error {
	if month < 1 || month > 12 {
		return models.NewValidationError(models.ErrInvalidDate, "month", strconv.Itoa(month))
	}
	if year < MinYear {
		return models.NewValidationError(models.ErrInvalidDate, "year", strconv.Itoa(year))
	}
	return nil
}

// ValidateYear rejects years before MinYear
func ValidateYear(year int) error {
	if year < MinYear {
		return models.NewValidationError(models.ErrInvalidYear, "year", strconv.Itoa(year))
	}
	return nil
}

// MonthWindow is [year-month-01, year-month-lastDay]
func MonthWindow(month, year int) (Window, error) {
	if err := ValidateMonth(month, year); err != nil {
		return Window{}, err
	}
	return Window{
		Start: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.Month(month), DaysInMonth(month, year), 0, 0, 0, 0, time.UTC),
	}, nil
}

// YearWindow is [year-01-01, year-12-31]
func YearWindow(year int) (Window, error) {
	if err := ValidateYear(year); err != nil {
		return Window{}, err
	}
	return Window{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}, nil
}

// TrendWindow starts at the UTC calendar day `days` before now and has no upper bound
func TrendWindow(now time.Time, days int) (Window, error) {
	if days <= 0 {
		return Window{}, models.NewValidationError(models.ErrInvalidDays, "days", strconv.Itoa(days))
	}
	start := now.UTC().AddDate(0, 0, -days)
	return Window{
		Start: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
	}, nil
}

// parseInt is strict: surrounding whitespace is allowed, trailing garbage is not
func parseInt(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	return n, err == nil
}

// ParseMonthPeriod parses and validates month and year query values
func ParseMonthPeriod(monthRaw, yearRaw string) (month, year int, err error) {
	month, ok := parseInt(monthRaw)
	if !ok {
		return 0, 0, models.NewValidationError(models.ErrInvalidDate, "month", monthRaw)
	}
	year, ok = parseInt(yearRaw)
	if !ok {
		return 0, 0, models.NewValidationError(models.ErrInvalidDate, "year", yearRaw)
	}
	if err := ValidateMonth(month, year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// ParseYear parses and validates a year query value
func ParseYear(raw string) (int, error) {
	year, ok := parseInt(raw)
	if !ok {
		return 0, models.NewValidationError(models.ErrInvalidYear, "year", raw)
	}
	if err := ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

// ParseDays parses the trend window length; empty means DefaultTrendDays
func ParseDays(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultTrendDays, nil
	}
	days, ok := parseInt(raw)
	if !ok || days <= 0 {
		return 0, models.NewValidationError(models.ErrInvalidDays, "days", raw)
	}
	return days, nil
}
