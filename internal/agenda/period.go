package agenda

import (
	"fmt"
	"strings"
	"time"

	"planner/internal/date"
)

// Mode selects how much of the calendar a view covers.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

// ParseMode accepts "day", "week" or "month" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDay, ModeWeek, ModeMonth:
		return m, nil
	case "":
		return ModeDay, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

// Period returns the inclusive day range a mode covers around selected.
func Period(mode Mode, selected time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	switch mode {
	case ModeWeek:
		return date.WeekRange(selected, weekStart)
	case ModeMonth:
		return date.MonthRange(selected)
	default:
		d := date.Day(selected)
		return d, d
	}
}

// Shift moves selected by n periods of mode. Month steps clamp to the last
// day of the target month.
func Shift(mode Mode, selected time.Time, n int) time.Time {
	switch mode {
	case ModeWeek:
		return date.AddDays(selected, 7*n)
	case ModeMonth:
		y, m, d := selected.Date()
		first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.Local)
		_, last := date.MonthRange(first)
		if d > last.Day() {
			d = last.Day()
		}
		return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.Local)
	default:
		return date.AddDays(selected, n)
	}
}

// Label renders the heading for a period.
func Label(mode Mode, start, end time.Time) string {
	switch mode {
	case ModeWeek:
		if start.Year() != end.Year() {
			return start.Format("Jan 2 2006") + " - " + end.Format("Jan 2 2006")
		}
		return start.Format("Jan 2") + " - " + end.Format("Jan 2 2006")
	case ModeMonth:
		return start.Format("January 2006")
	default:
		return start.Format("Monday, January 2 2006")
	}
}
