// Package repository is the planner's task repository: CRUD over a
// storage.Store plus the date-relative bucket and calendar queries the views
// are built from.
package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planner/internal/errors"
	"planner/internal/slogutil"
	"planner/internal/storage"
	"planner/internal/task"
)

// ErrNotFound is the cause of the TASK_NOT_FOUND error returned by Update.
var ErrNotFound = stderrors.New("task not found")

// ChangeKind says what a Change notification describes.
type ChangeKind string

const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
)

// Change is delivered to subscribers after a successful write. Task is nil
// for deletions.
type Change struct {
	Kind   ChangeKind
	TaskID string
	Task   *task.Task
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator sets the id source for new tasks.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// Repository reads and writes tasks through a Store. It holds no task state
// of its own; every query reloads from the store.
type Repository struct {
	store  storage.Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[int]func(Change)
	nextSub   int
}

// New creates a repository over store.
func New(store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		store:     store,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slogutil.NewDiscardLogger(),
		listeners: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create persists a new task built from d. The title is stored as given.
func (r *Repository) Create(ctx context.Context, d task.Draft) (*task.Task, error) {
	t := task.New(r.newID(), d, r.now())
	if err := r.store.Put(ctx, task.Encode(t)); err != nil {
		return nil, storageError("create task", err)
	}

	r.logger.Debug("Task created", "id", t.ID)
	r.notify(Change{Kind: Created, TaskID: t.ID, Task: t.Clone()})
	return t, nil
}

// GetByID returns the task with id, or (nil, nil) when there is none.
func (r *Repository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, storageError("get task", err)
	}
	if rec == nil {
		return nil, nil
	}
	t, err := task.Decode(*rec)
	if err != nil {
		return nil, storageError("decode task", err)
	}
	return t, nil
}

// GetAll returns every task, oldest first.
func (r *Repository) GetAll(ctx context.Context) ([]*task.Task, error) {
	tasks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool { return createdBefore(tasks[i], tasks[j]) })
	return tasks, nil
}

// Update merges p into the task with id and persists the result. The new
// UpdatedAt is always strictly later than the old one.
func (r *Repository) Update(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.New(errors.TaskNotFound, fmt.Sprintf("task %s not found", id), ErrNotFound).
			WithDetails(map[string]string{"id": id})
	}

	p.Apply(t)
	now := r.now()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now

	if err := r.store.Put(ctx, task.Encode(t)); err != nil {
		return nil, storageError("update task", err)
	}

	r.logger.Debug("Task updated", "id", t.ID, "done", t.IsDone)
	r.notify(Change{Kind: Updated, TaskID: t.ID, Task: t.Clone()})
	return t, nil
}

// Delete removes the task with id. Deleting a missing id succeeds.
func (r *Repository) Delete(ctx context.Context, id string) error {
	removed, err := r.store.Delete(ctx, id)
	if err != nil {
		return storageError("delete task", err)
	}
	if !removed {
		r.logger.Debug("Delete of unknown task ignored", "id", id)
		return nil
	}

	r.logger.Debug("Task deleted", "id", id)
	r.notify(Change{Kind: Deleted, TaskID: id})
	return nil
}

// GetTasksForDate buckets all tasks relative to the day of ref.
func (r *Repository) GetTasksForDate(ctx context.Context, ref time.Time, includeDone bool) (*Buckets, error) {
	return r.GetTasksForRange(ctx, ref, ref, includeDone)
}

// GetTasksForRange buckets all tasks relative to the inclusive day range
// [start, end]. Reversed bounds are swapped.
func (r *Repository) GetTasksForRange(ctx context.Context, start, end time.Time, includeDone bool) (*Buckets, error) {
	tasks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return Partition(tasks, start, end, includeDone), nil
}

// GetTasksForCalendar counts scheduled and deadline dates per day across all
// tasks, done or not.
func (r *Repository) GetTasksForCalendar(ctx context.Context) (*CalendarCounts, error) {
	tasks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return Count(tasks), nil
}

// Subscribe registers fn to run after every successful write. Listeners run
// synchronously on the writing goroutine. The returned func unsubscribes.
func (r *Repository) Subscribe(fn func(Change)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Publish delivers c to subscribers. It is for writes that reach the store
// without going through the repository, such as backup imports.
func (r *Repository) Publish(c Change) {
	r.notify(c)
}

func (r *Repository) notify(c Change) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.listeners[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (r *Repository) load(ctx context.Context) ([]*task.Task, error) {
	records, err := r.store.Scan(ctx)
	if err != nil {
		return nil, storageError("load tasks", err)
	}
	tasks, err := task.DecodeAll(records)
	if err != nil {
		return nil, storageError("decode tasks", err)
	}
	return tasks, nil
}

func storageError(op string, err error) error {
	return errors.New(errors.StorageFailure, op, err)
}
