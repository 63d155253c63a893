package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"emotional-diary/internal/models"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

// DefaultImportBatchSize is used when the caller passes a non-positive batch size
const DefaultImportBatchSize = 500

// maxImportLineSize bounds a single line, description included
const maxImportLineSize = 1024 * 1024

// EntryImporter is the part of the repository bulk import needs
type EntryImporter interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateEntriesBatch(ctx context.Context, entries []*models.DiaryEntry) error
}

// ImportService loads diary entries in bulk from tab separated files
type ImportService struct {
	repo    EntryImporter
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	// retry paces re-attempts of a batch that failed with a transient error
	retry func() backoff.BackOff
}

// ImportResult contains import statistics
type ImportResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// NewImportService creates a new import service
func NewImportService(repo EntryImporter, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ImportService {
	return &ImportService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		retry:   defaultBatchRetry,
	}
}

func defaultBatchRetry() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	return backoff.WithMaxRetries(exp, 2)
}

// isPermanent reports whether err says of itself that retrying cannot help
func isPermanent(err error) bool {
	var typed interface{ IsTransient() bool }
	return errors.As(err, &typed) && !typed.IsTransient()
}

// insertBatch retries transient storage failures; typed permanent errors fail at once
func (s *ImportService) insertBatch(ctx context.Context, batch []*models.DiaryEntry) error {
	attempt := 0
	op := func() error {
		attempt++
		err := s.repo.CreateEntriesBatch(ctx, batch)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		s.logger.Warn(ctx, "[IMPORT_BATCH_RETRY] Batch insert failed", logging.Fields{
			"attempt":    attempt,
			"batch_size": len(batch),
			"error":      err.Error(),
		})
		return err
	}
	return backoff.Retry(op, backoff.WithContext(s.retry(), ctx))
}

// ImportFile imports every line of filePath for userID
func (s *ImportService) ImportFile(ctx context.Context, userID int64, filePath string, batchSize int) (*ImportResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	s.logger.Info(ctx, "[IMPORT_START] Starting entry import", logging.Fields{
		"file_path":  filePath,
		"user_id":    userID,
		"batch_size": batchSize,
	})

	return s.Import(ctx, userID, file, batchSize)
}

// Import reads lines of the form YYYY-MM-DD<TAB>score[<TAB>description].
// Blank lines and lines starting with # are skipped. Lines that fail to parse
// are counted and reported. A batch that still fails after retries aborts the
// import; the partial result is returned with the error since earlier batches
// are already committed.
func (s *ImportService) Import(ctx context.Context, userID int64, r io.Reader, batchSize int) (*ImportResult, error) {
	startTime := time.Now()
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	batch := make([]*models.DiaryEntry, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.insertBatch(ctx, batch); err != nil {
			s.metrics.RecordImportError("batch_error")
			return fmt.Errorf("failed to insert batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
		batch = make([]*models.DiaryEntry, 0, batchSize)
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		result.TotalRecords++

		entry, err := parseImportLine(userID, line)
		if err != nil {
			result.FailedRecords++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNum, err))
			s.metrics.RecordImportError("parse_error")
			continue
		}

		batch = append(batch, entry)

		// Process batch when full
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				result.Duration = time.Since(startTime)
				return result, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		result.Duration = time.Since(startTime)
		return result, fmt.Errorf("error reading input: %w", err)
	}

	// Process remaining records
	if err := flush(); err != nil {
		result.Duration = time.Since(startTime)
		return result, err
	}

	result.Duration = time.Since(startTime)
	s.metrics.ImportDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[IMPORT_COMPLETE] Entry import completed", logging.Fields{
		"user_id":            userID,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
	})

	return result, nil
}

// parseImportLine parses one import line.
// Format: YYYY-MM-DD\tSCORE[\tDESCRIPTION]
func parseImportLine(userID int64, line string) (*models.DiaryEntry, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid line format: expected at least 2 fields, got %d", len(parts))
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", parts[0])
	}

	score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid score %q", parts[1])
	}
	if score < models.MinMoodScore || score > models.MaxMoodScore {
		return nil, fmt.Errorf("score %d out of range %d..%d", score, models.MinMoodScore, models.MaxMoodScore)
	}

	entry := &models.DiaryEntry{
		UserID:     userID,
		Date:       models.NewEntryDate(date),
		MoodScore:  &score,
		Activities: models.Activities{},
	}
	if len(parts) == 3 {
		if desc := strings.TrimSpace(parts[2]); desc != "" {
			entry.Description = &desc
		}
	}

	return entry, nil
}
