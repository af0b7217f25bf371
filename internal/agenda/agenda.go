// Package agenda is the view-model behind the planner's screens: it keeps the
// selected day and view mode, validates task forms and decides when the
// visible buckets are reloaded.
package agenda

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"planner/internal/config"
	"planner/internal/date"
	"planner/internal/errors"
	"planner/internal/repository"
	"planner/internal/slogutil"
	"planner/internal/task"
)

// Settings are the agenda's behavioural knobs.
type Settings struct {
	WeekStart      time.Weekday
	ToggleDelay    time.Duration
	IncludeDone    bool
	ExclusiveDates bool
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultConfig())
}

// SettingsFromConfig reads the agenda section of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		WeekStart:      cfg.WeekStartDay(),
		ToggleDelay:    cfg.ToggleDelay(),
		IncludeDone:    cfg.Agenda.IncludeDone,
		ExclusiveDates: cfg.Agenda.ExclusiveDates,
	}
}

// View is one rendered period.
type View struct {
	Mode    Mode                `json:"mode"`
	Start   time.Time           `json:"start"`
	End     time.Time           `json:"end"`
	Label   string              `json:"label"`
	Buckets *repository.Buckets `json:"buckets"`
}

// Option configures an Agenda.
type Option func(*Agenda)

// WithClock sets the clock used to pick the initial day.
func WithClock(now func() time.Time) Option {
	return func(a *Agenda) { a.now = now }
}

// WithLogger sets the agenda logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agenda) { a.logger = logger }
}

// Agenda holds the selection state of a planner screen.
type Agenda struct {
	repo     *repository.Repository
	settings Settings
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.Mutex
	mode      Mode
	selected  time.Time
	onRefresh func(View)
	pending   *time.Timer
	closed    bool
}

// New creates an agenda showing today in day mode.
func New(repo *repository.Repository, settings Settings, opts ...Option) *Agenda {
	a := &Agenda{
		repo:     repo,
		settings: settings,
		now:      time.Now,
		logger:   slogutil.NewDiscardLogger(),
		mode:     ModeDay,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.selected = date.Today(a.now)
	return a
}

// Mode returns the current view mode.
func (a *Agenda) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Selected returns the selected day.
func (a *Agenda) Selected() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// SetMode switches between day, week and month views.
func (a *Agenda) SetMode(m Mode) {
	a.mu.Lock()
	a.mode = m
	a.mu.Unlock()
}

// Select moves the selection to the day of t.
func (a *Agenda) Select(t time.Time) {
	a.mu.Lock()
	a.selected = date.Day(t)
	a.mu.Unlock()
}

// SetIncludeDone shows or hides done tasks in later loads.
func (a *Agenda) SetIncludeDone(on bool) {
	a.mu.Lock()
	a.settings.IncludeDone = on
	a.mu.Unlock()
}

// Step moves the selection by n periods of the current mode.
func (a *Agenda) Step(n int) {
	a.mu.Lock()
	a.selected = Shift(a.mode, a.selected, n)
	a.mu.Unlock()
}

// OnRefresh registers the callback that receives reloaded views. A later
// call replaces the earlier callback.
func (a *Agenda) OnRefresh(fn func(View)) {
	a.mu.Lock()
	a.onRefresh = fn
	a.mu.Unlock()
}

// Load reads the buckets for the current selection.
func (a *Agenda) Load(ctx context.Context) (View, error) {
	a.mu.Lock()
	mode, selected, settings := a.mode, a.selected, a.settings
	a.mu.Unlock()

	start, end := Period(mode, selected, settings.WeekStart)

	var (
		buckets *repository.Buckets
		err     error
	)
	if mode == ModeDay {
		buckets, err = a.repo.GetTasksForDate(ctx, selected, settings.IncludeDone)
	} else {
		buckets, err = a.repo.GetTasksForRange(ctx, start, end, settings.IncludeDone)
	}
	if err != nil {
		return View{}, err
	}

	return View{
		Mode:    mode,
		Start:   start,
		End:     end,
		Label:   Label(mode, start, end),
		Buckets: buckets,
	}, nil
}

// Save creates a task when id is empty and otherwise replaces the editable
// fields of the task with id. New tasks always start not done.
func (a *Agenda) Save(ctx context.Context, id string, f Form) (*task.Task, error) {
	a.mu.Lock()
	exclusive := a.settings.ExclusiveDates
	a.mu.Unlock()

	x, err := f.normalize(exclusive)
	if err != nil {
		return nil, err
	}

	var saved *task.Task
	if id == "" {
		saved, err = a.repo.Create(ctx, x.draft())
	} else {
		saved, err = a.repo.Update(ctx, id, x.patch())
	}
	if err != nil {
		return nil, err
	}

	a.refresh()
	return saved, nil
}

// Toggle flips the done flag of the task with id. The change is persisted
// immediately. When the task becomes done and done tasks are hidden, the
// view refresh waits for the configured delay so the row can be seen
// checked before it disappears.
func (a *Agenda) Toggle(ctx context.Context, id string) (*task.Task, error) {
	current, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.New(errors.TaskNotFound, fmt.Sprintf("task %s not found", id), repository.ErrNotFound).
			WithDetails(map[string]string{"id": id})
	}

	updated, err := a.repo.Update(ctx, id, task.Patch{IsDone: task.Ptr(!current.IsDone)})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	settings := a.settings
	a.mu.Unlock()

	if updated.IsDone && !settings.IncludeDone && settings.ToggleDelay > 0 {
		a.refreshAfter(settings.ToggleDelay)
	} else {
		a.refresh()
	}
	return updated, nil
}

// Delete removes the task with id. Missing ids are not an error.
func (a *Agenda) Delete(ctx context.Context, id string) error {
	if err := a.repo.Delete(ctx, id); err != nil {
		return err
	}
	a.refresh()
	return nil
}

// Close cancels a pending deferred refresh. Later refreshes are dropped.
func (a *Agenda) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
}

// refreshAfter schedules a refresh, replacing one already pending.
func (a *Agenda) refreshAfter(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.pending != nil {
		a.pending.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		a.mu.Lock()
		if a.pending != timer {
			a.mu.Unlock()
			return
		}
		a.pending = nil
		a.mu.Unlock()
		a.refresh()
	})
	a.pending = timer
}

func (a *Agenda) refresh() {
	a.mu.Lock()
	fn, closed := a.onRefresh, a.closed
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	a.mu.Unlock()
	if fn == nil || closed {
		return
	}

	view, err := a.Load(context.Background())
	if err != nil {
		a.logger.Warn("Agenda refresh failed", "error", err.Error())
		return
	}
	fn(view)
}
