package repository

import (
	"sort"
	"strings"
	"time"

	"planner/internal/date"
	"planner/internal/task"
)

// DayCounts maps a YYYY-MM-DD day key to a task count.
type DayCounts map[string]int

// Get returns the count for day, zero when absent.
func (c DayCounts) Get(day time.Time) int {
	return c[date.Key(day)]
}

// Dates returns the keys with a count, in ascending order.
func (c DayCounts) Dates() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total sums all counts.
func (c DayCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// CalendarCounts holds per-day badge counts for scheduled and deadline dates.
type CalendarCounts struct {
	Scheduled DayCounts `json:"scheduled"`
	Deadlines DayCounts `json:"deadlines"`
}

// Count tallies scheduled and deadline days over tasks. Done tasks count too.
func Count(tasks []*task.Task) *CalendarCounts {
	c := &CalendarCounts{Scheduled: DayCounts{}, Deadlines: DayCounts{}}
	for _, t := range tasks {
		if t.ScheduledDate != nil {
			c.Scheduled[date.Key(*t.ScheduledDate)]++
		}
		if t.DeadlineDate != nil {
			c.Deadlines[date.Key(*t.DeadlineDate)]++
		}
	}
	return c
}

// Month returns the counts restricted to the month containing ref.
func (c *CalendarCounts) Month(ref time.Time) *CalendarCounts {
	prefix := ref.Format("2006-01-")
	return &CalendarCounts{
		Scheduled: c.Scheduled.withPrefix(prefix),
		Deadlines: c.Deadlines.withPrefix(prefix),
	}
}

func (c DayCounts) withPrefix(prefix string) DayCounts {
	out := DayCounts{}
	for k, v := range c {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}
