package task

import (
	"errors"
	"fmt"
	"time"

	"planner/internal/date"
)

// TimestampLayout is the layout of created_at/updated_at in a Record.
const TimestampLayout = time.RFC3339Nano

// ErrInvalidRecord is returned by Decode for records that cannot be mapped
// back to a Task.
var ErrInvalidRecord = errors.New("invalid task record")

// Record is the persisted form of a Task. Timestamps are ISO-8601 instants
// and calendar dates are YYYY-MM-DD keys.
type Record struct {
	ID              string  `json:"id" yaml:"id" toml:"id"`
	Title           string  `json:"title" yaml:"title" toml:"title"`
	IsDone          bool    `json:"is_done" yaml:"is_done" toml:"is_done"`
	CreatedAt       string  `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt       string  `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
	ScheduledDate   *string `json:"scheduled_date,omitempty" yaml:"scheduled_date,omitempty" toml:"scheduled_date,omitempty"`
	ScheduledTime   *string `json:"scheduled_time,omitempty" yaml:"scheduled_time,omitempty" toml:"scheduled_time,omitempty"`
	DeadlineDate    *string `json:"deadline_date,omitempty" yaml:"deadline_date,omitempty" toml:"deadline_date,omitempty"`
	ReminderEnabled bool    `json:"reminder_enabled" yaml:"reminder_enabled" toml:"reminder_enabled"`
	Notes           *string `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
}

// Encode converts a task to its storage record.
func Encode(t *Task) Record {
	return Record{
		ID:              t.ID,
		Title:           t.Title,
		IsDone:          t.IsDone,
		CreatedAt:       formatTimestamp(t.CreatedAt),
		UpdatedAt:       formatTimestamp(t.UpdatedAt),
		ScheduledDate:   formatDay(t.ScheduledDate),
		ScheduledTime:   clonePtr(t.ScheduledTime),
		DeadlineDate:    formatDay(t.DeadlineDate),
		ReminderEnabled: t.ReminderEnabled,
		Notes:           clonePtr(t.Notes),
	}
}

// Decode converts a storage record back to a task. Timestamps come back in
// local time and calendar dates at local midnight.
func Decode(r Record) (*Task, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}

	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s created_at: %v", ErrInvalidRecord, r.ID, err)
	}
	updatedAt, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s updated_at: %v", ErrInvalidRecord, r.ID, err)
	}
	scheduled, err := parseDay(r.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s scheduled_date: %v", ErrInvalidRecord, r.ID, err)
	}
	deadline, err := parseDay(r.DeadlineDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s deadline_date: %v", ErrInvalidRecord, r.ID, err)
	}

	return &Task{
		ID:              r.ID,
		Title:           r.Title,
		IsDone:          r.IsDone,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		ScheduledDate:   scheduled,
		ScheduledTime:   clonePtr(r.ScheduledTime),
		DeadlineDate:    deadline,
		ReminderEnabled: r.ReminderEnabled,
		Notes:           clonePtr(r.Notes),
	}, nil
}

// DecodeAll decodes a batch of records, stopping at the first bad one.
func DecodeAll(records []Record) ([]*Task, error) {
	tasks := make([]*Task, 0, len(records))
	for _, r := range records {
		t, err := Decode(r)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	key := date.Key(*t)
	return &key
}

func parseDay(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := date.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
