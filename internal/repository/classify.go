package repository

import (
	"sort"
	"time"

	"planner/internal/date"
	"planner/internal/task"
)

// Bucket is the date-relative group a task is shown in. It is derived on
// every read and never stored.
type Bucket string

const (
	Overdue   Bucket = "overdue"
	Scheduled Bucket = "scheduled"
	Deadlines Bucket = "deadlines"
	Backlog   Bucket = "backlog"
)

// Buckets holds the four ordered groups for a day or range.
type Buckets struct {
	Overdue   []*task.Task `json:"overdue"`
	Scheduled []*task.Task `json:"scheduled"`
	Deadlines []*task.Task `json:"deadlines"`
	Backlog   []*task.Task `json:"backlog"`
}

// Len returns the number of tasks across all buckets.
func (b *Buckets) Len() int {
	return len(b.Overdue) + len(b.Scheduled) + len(b.Deadlines) + len(b.Backlog)
}

// All returns the tasks of every bucket in display order.
func (b *Buckets) All() []*task.Task {
	out := make([]*task.Task, 0, b.Len())
	out = append(out, b.Overdue...)
	out = append(out, b.Scheduled...)
	out = append(out, b.Deadlines...)
	return append(out, b.Backlog...)
}

// Classify places t relative to the single day ref. The bool is false when
// the task belongs to no bucket for that day, e.g. it is scheduled later.
func Classify(t *task.Task, ref time.Time) (Bucket, bool) {
	return ClassifyRange(t, ref, ref)
}

// ClassifyRange places t relative to the inclusive day range [start, end]:
//
//   - overdue: a scheduled or deadline date before start
//   - scheduled: a scheduled or deadline date inside the range
//   - deadlines: a deadline after end
//   - backlog: no dates at all
//
// The first matching rule wins. Only calendar days are compared.
func ClassifyRange(t *task.Task, start, end time.Time) (Bucket, bool) {
	s, d := t.ScheduledDate, t.DeadlineDate

	if (s != nil && date.Before(*s, start)) || (d != nil && date.Before(*d, start)) {
		return Overdue, true
	}
	if (s != nil && date.Within(*s, start, end)) || (d != nil && date.Within(*d, start, end)) {
		return Scheduled, true
	}
	if d != nil && date.Before(end, *d) {
		return Deadlines, true
	}
	if s == nil && d == nil {
		return Backlog, true
	}
	return "", false
}

// Partition classifies tasks against [start, end] and sorts every bucket.
// Done tasks are dropped first unless includeDone is set. Reversed bounds are
// swapped.
func Partition(tasks []*task.Task, start, end time.Time, includeDone bool) *Buckets {
	if date.Before(end, start) {
		start, end = end, start
	}

	b := &Buckets{
		Overdue:   []*task.Task{},
		Scheduled: []*task.Task{},
		Deadlines: []*task.Task{},
		Backlog:   []*task.Task{},
	}
	for _, t := range tasks {
		if t.IsDone && !includeDone {
			continue
		}
		bucket, ok := ClassifyRange(t, start, end)
		if !ok {
			continue
		}
		switch bucket {
		case Overdue:
			b.Overdue = append(b.Overdue, t)
		case Scheduled:
			b.Scheduled = append(b.Scheduled, t)
		case Deadlines:
			b.Deadlines = append(b.Deadlines, t)
		case Backlog:
			b.Backlog = append(b.Backlog, t)
		}
	}

	sort.SliceStable(b.Overdue, func(i, j int) bool {
		a, c := b.Overdue[i], b.Overdue[j]
		if n := date.Compare(overdueSince(a, start), overdueSince(c, start)); n != 0 {
			return n < 0
		}
		return createdBefore(a, c)
	})
	sort.SliceStable(b.Scheduled, func(i, j int) bool {
		return createdBefore(b.Scheduled[i], b.Scheduled[j])
	})
	sort.SliceStable(b.Deadlines, func(i, j int) bool {
		a, c := b.Deadlines[i], b.Deadlines[j]
		if n := date.Compare(*a.DeadlineDate, *c.DeadlineDate); n != 0 {
			return n < 0
		}
		return createdBefore(a, c)
	})
	sort.SliceStable(b.Backlog, func(i, j int) bool {
		return createdBefore(b.Backlog[i], b.Backlog[j])
	})
	return b
}

// overdueSince returns the earliest of t's dates that lie before start.
func overdueSince(t *task.Task, start time.Time) time.Time {
	var earliest *time.Time
	for _, d := range []*time.Time{t.ScheduledDate, t.DeadlineDate} {
		if d == nil || !date.Before(*d, start) {
			continue
		}
		if earliest == nil || date.Before(*d, *earliest) {
			earliest = d
		}
	}
	if earliest == nil {
		return start
	}
	return *earliest
}

// createdBefore orders by CreatedAt and breaks ties by id.
func createdBefore(a, b *task.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
