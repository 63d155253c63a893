package stats

import (
	"time"

	"emotional-diary/internal/models"
)

// MonthlyStatsReport summarizes one month of entries
type MonthlyStatsReport struct {
	TotalDays      int                  `json:"total_days"`
	AverageEmotion string               `json:"average_emotion"`
	WeeklyAverages []WeeklyAverage      `json:"weekly_averages"`
	Entries        []*models.DiaryEntry `json:"entries"`
}

// YearlyStatsReport rolls a year of entries up per calendar month
type YearlyStatsReport struct {
	Year         int                        `json:"year"`
	TotalEntries int                        `json:"totalEntries"`
	MonthlyStats map[int]MonthlyStatsReport `json:"monthlyStats"`
	AverageMood  float64                    `json:"averageMood"`
}

// MoodTrendReport describes mood over a trailing window of days
type MoodTrendReport struct {
	MoodCounts  map[int]int    `json:"moodCounts"`
	DailyMoods  map[string]int `json:"dailyMoods"`
	TotalDays   int            `json:"totalDays"`
	AverageMood float64        `json:"averageMood"`
}

// BuildMonthlyReport computes the monthly report over entries already scoped to one month
func BuildMonthlyReport(entries []*models.DiaryEntry) MonthlyStatsReport {
	if entries == nil {
		entries = []*models.DiaryEntry{}
	}
	return MonthlyStatsReport{
		TotalDays:      len(entries),
		AverageEmotion: FormatAverage(entries),
		WeeklyAverages: WeeklyBreakdown(entries),
		Entries:        entries,
	}
}

// BuildYearlyReport partitions a year of entries by month.
// Every month 1..12 is present; entries with unparseable dates land in none of them
// but still count toward TotalEntries and AverageMood.
func BuildYearlyReport(year int, entries []*models.DiaryEntry) YearlyStatsReport {
	byMonth := make(map[int][]*models.DiaryEntry, 12)
	for _, e := range entries {
		if e == nil || !e.Date.Valid {
			continue
		}
		month := int(e.Date.Time.Month())
		byMonth[month] = append(byMonth[month], e)
	}

	monthly := make(map[int]MonthlyStatsReport, 12)
	for month := 1; month <= 12; month++ {
		monthly[month] = BuildMonthlyReport(byMonth[month])
	}

	return YearlyStatsReport{
		Year:         year,
		TotalEntries: len(entries),
		MonthlyStats: monthly,
		AverageMood:  Average(entries),
	}
}

// TrendOptions controls how entries without a usable date are bucketed
type TrendOptions struct {
	// Now supplies today's key for entries with a missing date
	Now time.Time
	// ExcludeUnparseableDates drops entries without a parsed date from DailyMoods
	// instead of keying them by raw text or today's date.
	ExcludeUnparseableDates bool
}

// dayKey resolves the DailyMoods key for an entry: the parsed day, otherwise the raw
// string as stored, otherwise today. ok is false when the entry must be skipped.
func dayKey(d models.EntryDate, opts TrendOptions) (string, bool) {
	if day, ok := d.Day(); ok {
		return day, true
	}
	if opts.ExcludeUnparseableDates {
		return "", false
	}
	if d.Raw != "" {
		return d.Raw, true
	}
	return opts.Now.UTC().Format(models.DateLayout), true
}

// BuildTrendReport computes per-day moods and score frequencies.
// Entries without a usable score count only toward TotalDays. When two entries share
// a day the one iterated last wins.
func BuildTrendReport(entries []*models.DiaryEntry, opts TrendOptions) MoodTrendReport {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	report := MoodTrendReport{
		MoodCounts:  make(map[int]int),
		DailyMoods:  make(map[string]int),
		TotalDays:   len(entries),
		AverageMood: Average(entries),
	}

	for _, e := range entries {
		score, ok := e.Score()
		if !ok {
			continue
		}
		report.MoodCounts[score]++

		if key, ok := dayKey(e.Date, opts); ok {
			report.DailyMoods[key] = score
		}
	}

	return report
}

// Anomalies counts entries the aggregates had to work around
type Anomalies struct {
	MissingScore    int
	UnparseableDate int
}

// Inspect counts entries with no usable score or date
func Inspect(entries []*models.DiaryEntry) Anomalies {
	var a Anomalies
	for _, e := range entries {
		if _, ok := e.Score(); !ok {
			a.MissingScore++
		}
		if e == nil || !e.Date.Valid {
			a.UnparseableDate++
		}
	}
	return a
}
