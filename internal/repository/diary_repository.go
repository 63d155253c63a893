package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"emotional-diary/internal/models"
	"emotional-diary/pkg/database"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

// DiaryRepository provides data access for users and their diary entries
type DiaryRepository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// Entry operations
	CreateEntry(ctx context.Context, entry *models.DiaryEntry) error
	CreateEntriesBatch(ctx context.Context, entries []*models.DiaryEntry) error
	FindEntries(ctx context.Context, filter EntryFilter) ([]*models.DiaryEntry, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// EntryFilter scopes an entry query to one owner and an optional inclusive date range
type EntryFilter struct {
	UserID    int64
	StartDate *time.Time
	EndDate   *time.Time
}

const entryColumns = `id, user_id, date, emotion_score, description, activities, created_at, updated_at`

// diaryRepository implements DiaryRepository
type diaryRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDiaryRepository creates a new diary repository
func NewDiaryRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) DiaryRepository {
	return &diaryRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateUser inserts a user and sets its ID
func (r *diaryRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO users (username, email, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.GetContext(ctx, "insert_user", &user.ID, query,
		user.Username,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return &models.ConflictError{Resource: "user", Field: "email", Value: user.Email}
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_USER] User created", logging.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return nil
}

// GetUser retrieves a user by ID
func (r *diaryRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := r.db.Rebind(`
		SELECT id, username, email, created_at, updated_at
		FROM users
		WHERE id = ?
	`)

	var user models.User
	err := r.db.GetContext(ctx, "get_user", &user, query, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{
			Resource: "user",
			ID:       strconv.FormatInt(id, 10),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// CreateEntry inserts one diary entry and sets its ID
func (r *diaryRepository) CreateEntry(ctx context.Context, entry *models.DiaryEntry) error {
	stampEntry(entry, time.Now().UTC())

	query := r.db.Rebind(`
		INSERT INTO daily_entries (
			user_id, date, emotion_score, description, activities,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.GetContext(ctx, "insert_entry", &entry.ID, query, entryArgs(entry)...)
	if isForeignKeyViolation(err) {
		return &models.NotFoundError{Resource: "user", ID: strconv.FormatInt(entry.UserID, 10)}
	}
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	r.metrics.EntriesCreatedTotal.Inc()

	r.logger.Debug(ctx, "[REPO_CREATE_ENTRY] Entry created", logging.Fields{
		"entry_id": entry.ID,
		"user_id":  entry.UserID,
		"date":     entry.Date.String(),
	})

	return nil
}

// CreateEntriesBatch inserts multiple entries in a single transaction
func (r *diaryRepository) CreateEntriesBatch(ctx context.Context, entries []*models.DiaryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.ImportBatchSize.Observe(float64(len(entries)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(entries),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	// Begin transaction
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Prepare statement
	stmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO daily_entries (
			user_id, date, emotion_score, description, activities,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	// Execute batch
	now := time.Now().UTC()
	for _, entry := range entries {
		stampEntry(entry, now)
		if _, err := stmt.ExecContext(ctx, entryArgs(entry)...); err != nil {
			if isForeignKeyViolation(err) {
				return &models.NotFoundError{Resource: "user", ID: strconv.FormatInt(entry.UserID, 10)}
			}
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.ImportRecordsTotal.Add(float64(len(entries)))
	r.metrics.EntriesCreatedTotal.Add(float64(len(entries)))

	return nil
}

// FindEntries returns the owner's entries within the filter's inclusive range,
// oldest first with ties broken by ID.
func (r *diaryRepository) FindEntries(ctx context.Context, filter EntryFilter) ([]*models.DiaryEntry, error) {
	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + " FROM daily_entries WHERE user_id = ?")
	args := []interface{}{filter.UserID}

	if filter.StartDate != nil {
		b.WriteString(" AND date >= ?")
		args = append(args, filter.StartDate.Format(models.DateLayout))
	}

	// Half-open on the following day so rows stored as timestamps on the last
	// day still match when the driver compares dates as text.
	if filter.EndDate != nil {
		b.WriteString(" AND date < ?")
		args = append(args, filter.EndDate.AddDate(0, 0, 1).Format(models.DateLayout))
	}

	b.WriteString(" ORDER BY date ASC, id ASC")

	entries := []*models.DiaryEntry{}
	err := r.db.SelectContext(ctx, "find_entries", &entries, r.db.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find entries: %w", err)
	}

	return entries, nil
}

// HealthCheck performs a repository health check
func (r *diaryRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// stampEntry fills in defaults the database would otherwise own
func stampEntry(entry *models.DiaryEntry, now time.Time) {
	if !entry.Date.Valid && entry.Date.Raw == "" {
		entry.Date = models.NewEntryDate(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	}
	if entry.Activities == nil {
		entry.Activities = models.Activities{}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
}

func entryArgs(entry *models.DiaryEntry) []interface{} {
	return []interface{}{
		entry.UserID,
		entry.Date,
		entry.MoodScore,
		entry.Description,
		entry.Activities,
		entry.CreatedAt,
		entry.UpdatedAt,
	}
}

// isUniqueViolation recognizes unique constraint failures from either driver
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

// isForeignKeyViolation recognizes a reference to a missing user
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(liteErr.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}
