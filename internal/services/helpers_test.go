package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"emotional-diary/internal/models"
	"emotional-diary/internal/repository"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

var errStorage = errors.New("connection reset by peer")

// fakeRepo is an in-memory stand-in for repository.DiaryRepository
type fakeRepo struct {
	mu sync.Mutex

	users   map[int64]*models.User
	entries []*models.DiaryEntry
	filters []repository.EntryFilter
	batches [][]*models.DiaryEntry

	findErr   error
	createErr error
	nextID    int64

	// batchErr fails every batch call after the first batchErrAfter;
	// flakyBatches fails that many calls with errStorage before anything else.
	batchErr      error
	batchErrAfter int
	flakyBatches  int
	batchCalls    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*models.User{
		1: {ID: 1, Username: "ana", Email: "ana@example.com"},
	}}
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return &models.ConflictError{Resource: "user", Field: "email", Value: user.Email}
		}
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "user", ID: strconv.FormatInt(id, 10)}
	}
	return u, nil
}

func (f *fakeRepo) CreateEntry(ctx context.Context, entry *models.DiaryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepo) CreateEntriesBatch(ctx context.Context, entries []*models.DiaryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.flakyBatches > 0 {
		f.flakyBatches--
		return errStorage
	}
	if f.batchErr != nil && len(f.batches) >= f.batchErrAfter {
		return f.batchErr
	}
	f.batches = append(f.batches, entries)
	f.entries = append(f.entries, entries...)
	return nil
}

// FindEntries records the filter and returns the owner's entries unfiltered by date,
// so report code is exercised against whatever the store hands back.
func (f *fakeRepo) FindEntries(ctx context.Context, filter repository.EntryFilter) ([]*models.DiaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []*models.DiaryEntry{}
	for _, e := range f.entries {
		if e.UserID == filter.UserID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeRepo) seed(userID int64, score *int, date string) {
	f.entries = append(f.entries, &models.DiaryEntry{
		UserID:    userID,
		MoodScore: score,
		Date:      models.ParseEntryDate(date),
	})
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Notify(ctx context.Context, user *models.User, message string) error {
	n.calls = append(n.calls, user.Email+": "+message)
	return n.err
}

func testCollector() *metrics.Collector {
	return metrics.NewCollectorWithRegistry("diary_test", prometheus.NewRegistry())
}

func testLogger() *logging.StructuredLogger {
	return logging.NewNopLogger()
}

func intPtr(v int) *int { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
