// Package date implements local calendar-day arithmetic.
//
// A "day" is a time.Time at local midnight. Values are always reduced to their
// wall-clock year/month/day before they are compared, so two instants on the same
// local day compare equal regardless of time-of-day, and nothing is ever shifted
// through UTC.
package date

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeyLayout is the layout of a day key.
const KeyLayout = "2006-01-02"

// ErrInvalidDate is returned when a day key cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Day returns local midnight of t's wall-clock year, month and day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// Key formats t's wall-clock day as YYYY-MM-DD.
func Key(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Parse reads a YYYY-MM-DD key and returns local midnight of that day.
// The key is split into its components rather than handed to time.Parse,
// which would interpret it as a UTC instant.
func Parse(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// MustParse is Parse for constant inputs; it panics on error.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Compare returns -1, 0 or +1 depending on whether a's day is before, equal to
// or after b's day.
func Compare(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return sign(ay - by)
	case am != bm:
		return sign(int(am) - int(bm))
	default:
		return sign(ad - bd)
	}
}

// Same reports whether a and b fall on the same day.
func Same(a, b time.Time) bool {
	return Compare(a, b) == 0
}

// Before reports whether a's day is strictly before b's day.
func Before(a, b time.Time) bool {
	return Compare(a, b) < 0
}

// Within reports whether t's day lies in the inclusive interval [start, end].
func Within(t, start, end time.Time) bool {
	return Compare(t, start) >= 0 && Compare(t, end) <= 0
}

// Today returns the current day according to now.
func Today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return Day(now())
}

// AddDays moves t by n calendar days. The result is local midnight, so
// daylight-saving transitions never produce an off-by-one day.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, time.Local)
}

// WeekRange returns the first and last day of the week containing t.
func WeekRange(t time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	day := Day(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := AddDays(day, -offset)
	return start, AddDays(start, 6)
}

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(y, m+1, 0, 0, 0, 0, 0, time.Local)
	return start, end
}

// MonthGrid returns the whole weeks that cover t's month, each week holding
// seven consecutive days beginning on weekStart. Leading and trailing days
// belong to the neighbouring months.
func MonthGrid(t time.Time, weekStart time.Weekday) [][]time.Time {
	first, last := MonthRange(t)
	start, _ := WeekRange(first, weekStart)
	_, end := WeekRange(last, weekStart)

	days := Days(start, end)
	weeks := make([][]time.Time, 0, len(days)/7)
	for i := 0; i+7 <= len(days); i += 7 {
		weeks = append(weeks, days[i:i+7])
	}
	return weeks
}

// Days returns every day in the inclusive interval [start, end].
// It returns nil when end is before start.
func Days(start, end time.Time) []time.Time {
	if Before(end, start) {
		return nil
	}
	var days []time.Time
	for d := Day(start); !Before(end, d); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}

// ParseWeekday accepts English weekday names ("monday", "Mon") and returns
// the matching time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if name == full || (len(name) >= 3 && strings.HasPrefix(full, name)) {
			return wd, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
