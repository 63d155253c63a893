package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotional-diary/internal/models"
	"emotional-diary/migrations"
	"emotional-diary/pkg/database"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

func newTestRepository(t *testing.T) (DiaryRepository, *database.DB, *metrics.Collector) {
	t.Helper()

	logger := logging.NewNopLogger()
	collector := metrics.NewCollectorWithRegistry("diary_test", prometheus.NewRegistry())

	db, err := database.Open(&database.Config{
		Driver:       database.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "diary.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Apply(context.Background(), db, migrations.Up))

	return NewDiaryRepository(db, logger, collector), db, collector
}

func createUser(t *testing.T, repo DiaryRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Username: "tester", Email: email}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func scored(userID int64, date string, score int) *models.DiaryEntry {
	return &models.DiaryEntry{UserID: userID, Date: models.ParseEntryDate(date), MoodScore: &score}
}

func day(s string) *time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return &t
}

func TestCreateAndGetUser(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	user := createUser(t, repo, "ana@example.com")
	assert.NotZero(t, user.ID)

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "tester", got.Username)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = repo.GetUser(ctx, user.ID+100)
	var notFound *models.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	createUser(t, repo, "dup@example.com")
	err := repo.CreateUser(context.Background(), &models.User{Username: "other", Email: "dup@example.com"})

	var conflict *models.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, "email", conflict.Field)
}

func TestCreateEntry(t *testing.T) {
	repo, _, collector := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "entry@example.com")

	desc := "walked by the river"
	entry := scored(user.ID, "2024-06-01", 7)
	entry.Description = &desc
	entry.Activities = models.Activities{"walk", "music"}

	require.NoError(t, repo.CreateEntry(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.EntriesCreatedTotal))

	entries, err := repo.FindEntries(ctx, EntryFilter{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "2024-06-01", got.Date.String())
	score, ok := got.Score()
	assert.True(t, ok)
	assert.Equal(t, 7, score)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, models.Activities{"walk", "music"}, got.Activities)
}

func TestCreateEntry_DefaultsDateToToday(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "today@example.com")

	score := 5
	entry := &models.DiaryEntry{UserID: user.ID, MoodScore: &score}
	require.NoError(t, repo.CreateEntry(ctx, entry))

	assert.Equal(t, time.Now().UTC().Format(models.DateLayout), entry.Date.String())
	assert.NotNil(t, entry.Activities)
}

func TestCreateEntry_UnknownUser(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	err := repo.CreateEntry(context.Background(), scored(4242, "2024-06-01", 5))

	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, "user", notFound.Resource)
}

func TestFindEntries_ScopeRangeOrder(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	owner := createUser(t, repo, "owner@example.com")
	other := createUser(t, repo, "other@example.com")

	for _, e := range []*models.DiaryEntry{
		scored(owner.ID, "2024-06-30", 7),
		scored(owner.ID, "2024-06-01", 5),
		scored(owner.ID, "2024-05-31", 2),
		scored(owner.ID, "2024-07-01", 9),
		scored(owner.ID, "2024-06-15", 6),
		scored(owner.ID, "2024-06-15", 4),
		scored(other.ID, "2024-06-10", 10),
	} {
		require.NoError(t, repo.CreateEntry(ctx, e))
	}

	entries, err := repo.FindEntries(ctx, EntryFilter{
		UserID:    owner.ID,
		StartDate: day("2024-06-01"),
		EndDate:   day("2024-06-30"),
	})
	require.NoError(t, err)

	var got []string
	var scores []int
	for _, e := range entries {
		assert.Equal(t, owner.ID, e.UserID)
		got = append(got, e.Date.String())
		s, _ := e.Score()
		scores = append(scores, s)
	}
	assert.Equal(t, []string{"2024-06-01", "2024-06-15", "2024-06-15", "2024-06-30"}, got)
	assert.Equal(t, []int{5, 6, 4, 7}, scores)
}

func TestFindEntries_OpenEnded(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "open@example.com")

	require.NoError(t, repo.CreateEntry(ctx, scored(user.ID, "2020-01-01", 3)))
	require.NoError(t, repo.CreateEntry(ctx, scored(user.ID, "2030-01-01", 8)))

	entries, err := repo.FindEntries(ctx, EntryFilter{UserID: user.ID, StartDate: day("2025-01-01")})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2030-01-01", entries[0].Date.String())

	none, err := repo.FindEntries(ctx, EntryFilter{UserID: user.ID + 99})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFindEntries_ToleratesMalformedRows(t *testing.T) {
	repo, db, _ := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "messy@example.com")

	_, err := db.ExecContext(ctx, "seed", `
		INSERT INTO daily_entries (user_id, date, emotion_score, description, activities)
		VALUES (?, '2024-06-02', NULL, 'no score', '[]'),
		       (?, '2024-06-03 08:15:00', 6, NULL, '[]')
	`, user.ID, user.ID)
	require.NoError(t, err)

	entries, err := repo.FindEntries(ctx, EntryFilter{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, ok := entries[0].Score()
	assert.False(t, ok)
	assert.Equal(t, "2024-06-03", entries[1].Date.String())
	assert.Nil(t, entries[1].Description)
}

func TestFindEntries_TimestampRowsOnLastDay(t *testing.T) {
	repo, db, _ := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "stamps@example.com")

	_, err := db.ExecContext(ctx, "seed", `
		INSERT INTO daily_entries (user_id, date, emotion_score, description, activities)
		VALUES (?, '2024-06-30 08:15:00', 5, NULL, '[]'),
		       (?, '2024-06-30T08:15:00Z', 6, NULL, '[]'),
		       (?, '2024-06-30', 7, NULL, '[]'),
		       (?, '2024-07-01 00:00:00', 8, NULL, '[]'),
		       (?, '2024-12-31 23:59:59', 9, NULL, '[]'),
		       (?, '2025-01-01 00:00:00', 3, NULL, '[]')
	`, user.ID, user.ID, user.ID, user.ID, user.ID, user.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end string
		want       []int
	}{
		{"last day of month", "2024-06-01", "2024-06-30", []int{5, 6, 7}},
		{"last day of year", "2024-01-01", "2024-12-31", []int{5, 6, 7, 8, 9}},
		{"single day", "2024-12-31", "2024-12-31", []int{9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := repo.FindEntries(ctx, EntryFilter{
				UserID:    user.ID,
				StartDate: day(tt.start),
				EndDate:   day(tt.end),
			})
			require.NoError(t, err)

			got := make([]int, 0, len(entries))
			for _, e := range entries {
				score, ok := e.Score()
				require.True(t, ok)
				got = append(got, score)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestCreateEntriesBatch(t *testing.T) {
	repo, _, collector := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "batch@example.com")

	batch := []*models.DiaryEntry{
		scored(user.ID, "2024-01-01", 4),
		scored(user.ID, "2024-01-02", 6),
		scored(user.ID, "2024-01-03", 8),
	}
	require.NoError(t, repo.CreateEntriesBatch(ctx, batch))
	require.NoError(t, repo.CreateEntriesBatch(ctx, nil))

	entries, err := repo.FindEntries(ctx, EntryFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.ImportRecordsTotal))
}

func TestCreateEntriesBatch_RollsBack(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	user := createUser(t, repo, "rollback@example.com")

	batch := []*models.DiaryEntry{
		scored(user.ID, "2024-01-01", 4),
		scored(user.ID, "2024-01-02", 11),
	}
	require.Error(t, repo.CreateEntriesBatch(ctx, batch))

	entries, err := repo.FindEntries(ctx, EntryFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealthCheck(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	assert.NoError(t, repo.HealthCheck(context.Background()))
}
