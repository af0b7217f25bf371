// Package task defines the planner's task record, its partial-update type and
// the codec that maps it to the string-only form kept by storage backends.
package task

import (
	"time"

	"planner/internal/date"
)

// Task is a single planned item.
//
// ScheduledDate and DeadlineDate are calendar days held at local midnight.
// Both may be set at once; any exclusivity between them is a form-level
// decision made by callers.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	IsDone          bool       `json:"is_done"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
	ScheduledTime   *string    `json:"scheduled_time,omitempty"` // "HH:mm"
	DeadlineDate    *time.Time `json:"deadline_date,omitempty"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	Notes           *string    `json:"notes,omitempty"`
}

// Draft holds the caller-supplied fields of a new task. Identity and
// timestamps are assigned by the repository.
type Draft struct {
	Title           string
	IsDone          bool
	ScheduledDate   *time.Time
	ScheduledTime   *string
	DeadlineDate    *time.Time
	ReminderEnabled bool
	Notes           *string
}

// New builds a task from a draft. Calendar dates are normalized to local
// midnight.
func New(id string, d Draft, now time.Time) *Task {
	return &Task{
		ID:              id,
		Title:           d.Title,
		IsDone:          d.IsDone,
		CreatedAt:       now,
		UpdatedAt:       now,
		ScheduledDate:   dayPtr(d.ScheduledDate),
		ScheduledTime:   clonePtr(d.ScheduledTime),
		DeadlineDate:    dayPtr(d.DeadlineDate),
		ReminderEnabled: d.ReminderEnabled,
		Notes:           clonePtr(d.Notes),
	}
}

// HasDates reports whether the task has a scheduled or a deadline date.
func (t *Task) HasDates() bool {
	return t.ScheduledDate != nil || t.DeadlineDate != nil
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.ScheduledDate = clonePtr(t.ScheduledDate)
	c.ScheduledTime = clonePtr(t.ScheduledTime)
	c.DeadlineDate = clonePtr(t.DeadlineDate)
	c.Notes = clonePtr(t.Notes)
	return &c
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func dayPtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	d := date.Day(*p)
	return &d
}
