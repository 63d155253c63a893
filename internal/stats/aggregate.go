package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"emotional-diary/internal/models"
)

// WeeklyAverage is the mean score of one week-of-month bucket
type WeeklyAverage struct {
	Week    int    `json:"week"`
	Average string `json:"average"`
}

// sumScores adds up the usable scores and counts them
func sumScores(entries []*models.DiaryEntry) (sum, n int) {
	for _, e := range entries {
		if score, ok := e.Score(); ok {
			sum += score
			n++
		}
	}
	return sum, n
}

// exactMean divides without rounding
func exactMean(sum, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n)))
}

// mean divides exactly and rounds half-up to two decimals
func mean(sum, n int) decimal.Decimal {
	return exactMean(sum, n).Round(2)
}

// averageDecimal is the rounded mean of the usable scores in entries
func averageDecimal(entries []*models.DiaryEntry) decimal.Decimal {
	sum, n := sumScores(entries)
	return mean(sum, n)
}

// Average returns the mean score of entries rounded to two decimals, 0 when none are usable
func Average(entries []*models.DiaryEntry) float64 {
	return averageDecimal(entries).InexactFloat64()
}

// FormatAverage is Average rendered with exactly two decimals
func FormatAverage(entries []*models.DiaryEntry) string {
	return averageDecimal(entries).StringFixed(2)
}

// WeekOfMonth returns ceil(day/7): days 1-7 are week 1, 29-31 week 5
func WeekOfMonth(day int) int {
	return (day + 6) / 7
}

// WeeklyBreakdown groups entries by week of month, ascending.
// Entries whose date did not parse are left out; weeks without entries are omitted.
func WeeklyBreakdown(entries []*models.DiaryEntry) []WeeklyAverage {
	byWeek := make(map[int][]*models.DiaryEntry)
	for _, e := range entries {
		if e == nil || !e.Date.Valid {
			continue
		}
		week := WeekOfMonth(e.Date.Time.Day())
		byWeek[week] = append(byWeek[week], e)
	}

	weeks := make([]int, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	out := make([]WeeklyAverage, 0, len(weeks))
	for _, week := range weeks {
		out = append(out, WeeklyAverage{
			Week:    week,
			Average: FormatAverage(byWeek[week]),
		})
	}
	return out
}
