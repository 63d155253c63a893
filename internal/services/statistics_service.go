package services

import (
	"context"
	"fmt"
	"time"

	"emotional-diary/internal/models"
	"emotional-diary/internal/repository"
	"emotional-diary/internal/stats"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

// EntryFinder is the read side of the repository the reports depend on
type EntryFinder interface {
	FindEntries(ctx context.Context, filter repository.EntryFilter) ([]*models.DiaryEntry, error)
}

// StatisticsOptions tunes report building
type StatisticsOptions struct {
	// ExcludeUnparseableDates leaves entries without a parsed date out of trend dailyMoods
	ExcludeUnparseableDates bool
}

// StatisticsService builds mood reports for one user at a time
type StatisticsService struct {
	entries EntryFinder
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	options StatisticsOptions
	now     func() time.Time
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(entries EntryFinder, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, options StatisticsOptions) *StatisticsService {
	return &StatisticsService{
		entries: entries,
		logger:  logger,
		metrics: metricsCollector,
		options: options,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// MonthlySummary reports on the user's entries in one calendar month
func (s *StatisticsService) MonthlySummary(ctx context.Context, userID int64, month, year int) (*stats.MonthlyStatsReport, error) {
	window, err := stats.MonthWindow(month, year)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.StatsCalculationDuration.WithLabelValues("monthly"))
	defer timer.ObserveDuration()

	entries, err := s.fetch(ctx, "monthly", userID, window)
	if err != nil {
		return nil, err
	}

	report := stats.BuildMonthlyReport(entries)

	s.logger.Debug(ctx, "[STATS_MONTHLY] Monthly report built", logging.Fields{
		"month":      month,
		"year":       year,
		"total_days": report.TotalDays,
	})

	return &report, nil
}

// YearlySummary reports on the user's entries in one calendar year, broken down per month
func (s *StatisticsService) YearlySummary(ctx context.Context, userID int64, year int) (*stats.YearlyStatsReport, error) {
	window, err := stats.YearWindow(year)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.StatsCalculationDuration.WithLabelValues("yearly"))
	defer timer.ObserveDuration()

	entries, err := s.fetch(ctx, "yearly", userID, window)
	if err != nil {
		return nil, err
	}

	report := stats.BuildYearlyReport(year, entries)

	s.logger.Debug(ctx, "[STATS_YEARLY] Yearly report built", logging.Fields{
		"year":          year,
		"total_entries": report.TotalEntries,
	})

	return &report, nil
}

// MoodTrends reports daily moods and score frequencies over the last days
func (s *StatisticsService) MoodTrends(ctx context.Context, userID int64, days int) (*stats.MoodTrendReport, error) {
	now := s.now()
	window, err := stats.TrendWindow(now, days)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.StatsCalculationDuration.WithLabelValues("trends"))
	defer timer.ObserveDuration()

	entries, err := s.fetch(ctx, "trends", userID, window)
	if err != nil {
		return nil, err
	}

	report := stats.BuildTrendReport(entries, stats.TrendOptions{
		Now:                     now,
		ExcludeUnparseableDates: s.options.ExcludeUnparseableDates,
	})

	return &report, nil
}

// MoodState classifies the user's mood over the last days
func (s *StatisticsService) MoodState(ctx context.Context, userID int64, days int) (*stats.MoodSummary, error) {
	window, err := stats.TrendWindow(s.now(), days)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.StatsCalculationDuration.WithLabelValues("mood"))
	defer timer.ObserveDuration()

	entries, err := s.fetch(ctx, "mood", userID, window)
	if err != nil {
		return nil, err
	}

	summary := stats.Summarize(entries)
	return &summary, nil
}

// Distribution counts the user's entries per day and per score over the last days
func (s *StatisticsService) Distribution(ctx context.Context, userID int64, days int) (*stats.Distribution, error) {
	window, err := stats.TrendWindow(s.now(), days)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.StatsCalculationDuration.WithLabelValues("distribution"))
	defer timer.ObserveDuration()

	entries, err := s.fetch(ctx, "distribution", userID, window)
	if err != nil {
		return nil, err
	}

	distribution := stats.BuildDistribution(entries)
	return &distribution, nil
}

// fetch loads the user's entries inside window and reports malformed rows
func (s *StatisticsService) fetch(ctx context.Context, report string, userID int64, window stats.Window) ([]*models.DiaryEntry, error) {
	filter := repository.EntryFilter{
		UserID:    userID,
		StartDate: &window.Start,
	}
	if !window.End.IsZero() {
		filter.EndDate = &window.End
	}

	entries, err := s.entries.FindEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for %s report: %w", report, err)
	}

	s.recordAnomalies(ctx, report, entries)
	return entries, nil
}

// recordAnomalies surfaces rows the aggregates had to skip or fall back on
func (s *StatisticsService) recordAnomalies(ctx context.Context, report string, entries []*models.DiaryEntry) {
	a := stats.Inspect(entries)
	if a.MissingScore == 0 && a.UnparseableDate == 0 {
		return
	}

	s.metrics.RecordMalformedEntries("missing_score", a.MissingScore)
	s.metrics.RecordMalformedEntries("unparseable_date", a.UnparseableDate)

	s.logger.Warn(ctx, "[STATS_MALFORMED_ENTRIES] Entries without a usable score or date", logging.Fields{
		"report":           report,
		"missing_score":    a.MissingScore,
		"unparseable_date": a.UnparseableDate,
		"exclude_dates":    s.options.ExcludeUnparseableDates,
	})
}
