package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/date"
	"planner/internal/errors"
	"planner/internal/slogutil"
	"planner/internal/storage"
	"planner/internal/storage/memstore"
	"planner/internal/task"
)

// fakeClock advances by one second on every call.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newTestRepo(t *testing.T) (*Repository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local)}
	repo := New(memstore.New(),
		WithClock(clock.Now),
		WithIDGenerator(sequentialIDs()),
		WithLogger(slogutil.NewDiscardLogger()),
	)
	return repo, clock
}

func day(s string) *time.Time {
	d := date.MustParse(s)
	return &d
}

func mustCreate(t *testing.T, repo *Repository, d task.Draft) *task.Task {
	t.Helper()
	created, err := repo.Create(context.Background(), d)
	require.NoError(t, err)
	return created
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	created := mustCreate(t, repo, task.Draft{
		Title:         "Write report",
		ScheduledDate: day("2024-06-15"),
		ScheduledTime: task.Ptr("09:30"),
		Notes:         task.Ptr("Q2"),
	})

	assert.Equal(t, "id-001", created.ID)
	assert.False(t, created.IsDone)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Write report", got.Title)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, date.MustParse("2024-06-15"), *got.ScheduledDate)
	assert.Equal(t, "09:30", *got.ScheduledTime)
	assert.Equal(t, "Q2", *got.Notes)
}

func TestCreateKeepsBlankTitle(t *testing.T) {
	repo, _ := newTestRepo(t)
	created := mustCreate(t, repo, task.Draft{Title: "   "})

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "   ", got.Title)
}

func TestCreateAcceptsBothDates(t *testing.T) {
	repo, _ := newTestRepo(t)
	created := mustCreate(t, repo, task.Draft{
		Title:         "both",
		ScheduledDate: day("2024-06-10"),
		DeadlineDate:  day("2024-06-12"),
	})

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ScheduledDate)
	assert.NotNil(t, got.DeadlineDate)
}

func TestGetByIDMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAllOrdersByCreation(t *testing.T) {
	repo, _ := newTestRepo(t)
	for _, title := range []string{"first", "second", "third"} {
		mustCreate(t, repo, task.Draft{Title: title})
	}

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"first", "second", "third"}, titles(all))
}

func TestUpdateMerge(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	created := mustCreate(t, repo, task.Draft{
		Title:         "Pay rent",
		ScheduledDate: day("2024-06-03"),
		DeadlineDate:  day("2024-06-05"),
		Notes:         task.Ptr("landlord"),
	})

	updated, err := repo.Update(ctx, created.ID, task.Patch{IsDone: task.Ptr(true)})
	require.NoError(t, err)

	assert.True(t, updated.IsDone)
	assert.Equal(t, "Pay rent", updated.Title)
	assert.Equal(t, date.MustParse("2024-06-03"), *updated.ScheduledDate)
	assert.Equal(t, date.MustParse("2024-06-05"), *updated.DeadlineDate)
	assert.Equal(t, "landlord", *updated.Notes)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDone)
	assert.True(t, stored.UpdatedAt.Equal(updated.UpdatedAt))
}

func TestUpdateExplicitClear(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	created := mustCreate(t, repo, task.Draft{
		Title:        "x",
		DeadlineDate: day("2024-06-05"),
		Notes:        task.Ptr("n"),
	})

	updated, err := repo.Update(ctx, created.ID, task.Patch{
		DeadlineDate: task.Clear[time.Time](),
		Notes:        task.Clear[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DeadlineDate)
	assert.Nil(t, updated.Notes)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DeadlineDate)
	assert.Nil(t, stored.Notes)
}

func TestUpdateNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Update(context.Background(), "ghost", task.Patch{Title: task.Ptr("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, errors.TaskNotFound, errors.CodeOf(err))

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "a failed update must not create a record")
}

func TestUpdateAdvancesUpdatedAtWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	repo := New(memstore.New(), WithClock(func() time.Time { return frozen }))

	created, err := repo.Create(ctx, task.Draft{Title: "x"})
	require.NoError(t, err)

	first, err := repo.Update(ctx, created.ID, task.Patch{IsDone: task.Ptr(true)})
	require.NoError(t, err)
	second, err := repo.Update(ctx, created.ID, task.Patch{IsDone: task.Ptr(false)})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	created := mustCreate(t, repo, task.Draft{Title: "x"})

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	var got []Change
	unsubscribe := repo.Subscribe(func(c Change) { got = append(got, c) })

	created := mustCreate(t, repo, task.Draft{Title: "x"})
	_, err := repo.Update(ctx, created.ID, task.Patch{IsDone: task.Ptr(true)})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Update(ctx, "ghost", task.Patch{})
	require.Error(t, err)

	require.Len(t, got, 3, "only successful writes notify; a no-op delete does not")
	assert.Equal(t, Created, got[0].Kind)
	assert.Equal(t, Updated, got[1].Kind)
	assert.True(t, got[1].Task.IsDone)
	assert.Equal(t, Deleted, got[2].Kind)
	assert.Nil(t, got[2].Task)
	assert.Equal(t, created.ID, got[2].TaskID)

	unsubscribe()
	unsubscribe()
	mustCreate(t, repo, task.Draft{Title: "y"})
	assert.Len(t, got, 3)
}

func TestPublish(t *testing.T) {
	repo, _ := newTestRepo(t)

	var got []Change
	unsubscribe := repo.Subscribe(func(c Change) { got = append(got, c) })
	defer unsubscribe()

	repo.Publish(Change{Kind: Updated, TaskID: "restored"})
	require.Len(t, got, 1)
	assert.Equal(t, Updated, got[0].Kind)
	assert.Equal(t, "restored", got[0].TaskID)
}

func TestSubscriberGetsCopy(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.Subscribe(func(c Change) { c.Task.Title = "mutated by listener" })

	created := mustCreate(t, repo, task.Draft{Title: "original"})
	assert.Equal(t, "original", created.Title)
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (s failingStore) Put(context.Context, task.Record) error { return s.err }
func (s failingStore) Get(context.Context, string) (*task.Record, error) {
	return nil, s.err
}
func (s failingStore) Delete(context.Context, string) (bool, error) { return false, s.err }
func (s failingStore) Scan(context.Context) ([]task.Record, error) { return nil, s.err }
func (s failingStore) Close() error { return nil }

func TestStorageFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	diskFull := stderrors.New("disk full")
	repo := New(failingStore{err: diskFull})

	calls := map[string]func() error{
		"create": func() error { _, err := repo.Create(ctx, task.Draft{Title: "x"}); return err },
		"get":    func() error { _, err := repo.GetByID(ctx, "a"); return err },
		"update": func() error { _, err := repo.Update(ctx, "a", task.Patch{}); return err },
		"delete": func() error { return repo.Delete(ctx, "a") },
		"date":   func() error { _, err := repo.GetTasksForDate(ctx, time.Now(), false); return err },
		"range": func() error {
			_, err := repo.GetTasksForRange(ctx, time.Now(), time.Now(), false)
			return err
		},
		"calendar": func() error { _, err := repo.GetTasksForCalendar(ctx); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.ErrorIs(t, err, diskFull)
			assert.Equal(t, errors.StorageFailure, errors.CodeOf(err))
		})
	}
}

func TestClosedStoreSurfacesErrClosed(t *testing.T) {
	store := memstore.New()
	repo := New(store)
	require.NoError(t, store.Close())

	_, err := repo.GetAll(context.Background())
	assert.ErrorIs(t, err, storage.ErrClosed)
}

func TestCorruptRecordIsStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Put(ctx, task.Record{ID: "bad", CreatedAt: "not a time", UpdatedAt: "x"}))

	_, err := New(store).GetAll(ctx)
	assert.ErrorIs(t, err, task.ErrInvalidRecord)
	assert.Equal(t, errors.StorageFailure, errors.CodeOf(err))
}

func TestSQLiteBackedRepository(t *testing.T) {
	ctx := context.Background()
	store, err := storage.OpenTaskStore(filepath.Join(t.TempDir(), "planner.db"), slogutil.NewDiscardLogger())
	require.NoError(t, err)
	defer store.Close()

	repo := New(store)
	created, err := repo.Create(ctx, task.Draft{Title: "persisted", DeadlineDate: day("2024-06-15")})
	require.NoError(t, err)

	buckets, err := repo.GetTasksForDate(ctx, date.MustParse("2024-06-15"), false)
	require.NoError(t, err)
	require.Len(t, buckets.Scheduled, 1)
	assert.Equal(t, created.ID, buckets.Scheduled[0].ID)
	assert.True(t, created.CreatedAt.Equal(buckets.Scheduled[0].CreatedAt))
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
