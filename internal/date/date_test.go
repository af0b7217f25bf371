package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayDropsTimeOfDay(t *testing.T) {
	late := time.Date(2024, 6, 15, 23, 59, 59, 999, time.Local)
	day := Day(late)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local), day)
	assert.Equal(t, "2024-06-15", Key(late))
}

func TestKeyUsesWallClockNotUTC(t *testing.T) {
	// 23:30 at UTC-5 is already the next day in UTC.
	zone := time.FixedZone("UTC-5", -5*3600)
	evening := time.Date(2024, 6, 15, 23, 30, 0, 0, zone)

	assert.Equal(t, "2024-06-15", Key(evening))
	assert.Equal(t, "2024-06-15", Key(Day(evening)))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-05-10", time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local), false},
		{"2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), false},
		{" 2024-12-31 ", time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local), false},
		{"2023-02-29", time.Time{}, true},
		{"2024-13-01", time.Time{}, true},
		{"2024-00-10", time.Time{}, true},
		{"2024-5-10", time.Time{}, true},
		{"2024-05-10T00:00:00Z", time.Time{}, true},
		{"", time.Time{}, true},
		{"abcd-ef-gh", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "Parse(%q) = %v, want %v", tt.in, got, tt.want)
			assert.Equal(t, time.Local, got.Location())
		})
	}
}

func TestCompare(t *testing.T) {
	morning := time.Date(2024, 6, 15, 8, 0, 0, 0, time.Local)
	night := time.Date(2024, 6, 15, 22, 0, 0, 0, time.Local)
	next := time.Date(2024, 6, 16, 0, 0, 0, 0, time.Local)

	assert.Equal(t, 0, Compare(morning, night))
	assert.True(t, Same(morning, night))
	assert.Equal(t, -1, Compare(night, next))
	assert.Equal(t, 1, Compare(next, morning))
	assert.True(t, Before(night, next))
	assert.False(t, Before(night, morning))
	assert.Equal(t, -1, Compare(time.Date(2023, 12, 31, 0, 0, 0, 0, time.Local), next))
}

func TestWithin(t *testing.T) {
	start := MustParse("2024-06-10")
	end := MustParse("2024-06-16")

	assert.True(t, Within(start, start, end))
	assert.True(t, Within(time.Date(2024, 6, 16, 23, 0, 0, 0, time.Local), start, end))
	assert.False(t, Within(MustParse("2024-06-09"), start, end))
	assert.False(t, Within(MustParse("2024-06-17"), start, end))
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name      string
		day       string
		weekStart time.Weekday
		wantStart string
		wantEnd   string
	}{
		{"saturday monday-start", "2024-06-15", time.Monday, "2024-06-10", "2024-06-16"},
		{"monday itself", "2024-06-10", time.Monday, "2024-06-10", "2024-06-16"},
		{"sunday monday-start", "2024-06-16", time.Monday, "2024-06-10", "2024-06-16"},
		{"sunday sunday-start", "2024-06-16", time.Sunday, "2024-06-16", "2024-06-22"},
		{"across year", "2025-01-01", time.Monday, "2024-12-30", "2025-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(MustParse(tt.day), tt.weekStart)
			assert.Equal(t, tt.wantStart, Key(start))
			assert.Equal(t, tt.wantEnd, Key(end))
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(MustParse("2024-02-14"))
	assert.Equal(t, "2024-02-01", Key(start))
	assert.Equal(t, "2024-02-29", Key(end))

	start, end = MonthRange(MustParse("2024-12-05"))
	assert.Equal(t, "2024-12-01", Key(start))
	assert.Equal(t, "2024-12-31", Key(end))
}

func TestMonthGrid(t *testing.T) {
	// June 2024 starts on a Saturday and ends on a Sunday.
	weeks := MonthGrid(MustParse("2024-06-15"), time.Monday)

	require.Len(t, weeks, 5)
	assert.Equal(t, "2024-05-27", Key(weeks[0][0]))
	assert.Equal(t, "2024-06-30", Key(weeks[4][6]))
	for _, week := range weeks {
		require.Len(t, week, 7)
		assert.Equal(t, time.Monday, week[0].Weekday())
	}
}

func TestDays(t *testing.T) {
	days := Days(MustParse("2024-02-27"), MustParse("2024-03-01"))
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = Key(d)
	}
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, keys)

	assert.Nil(t, Days(MustParse("2024-03-01"), MustParse("2024-02-27")))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2024-03-01", Key(AddDays(MustParse("2024-02-28"), 2)))
	assert.Equal(t, "2023-12-31", Key(AddDays(MustParse("2024-01-01"), -1)))
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"monday": time.Monday,
		"Mon":    time.Monday,
		"SUNDAY": time.Sunday,
		"sat":    time.Saturday,
	} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWeekday("mo")
	assert.Error(t, err)
	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	fixed := func() time.Time { return time.Date(2024, 6, 15, 13, 45, 0, 0, time.Local) }
	assert.Equal(t, "2024-06-15", Key(Today(fixed)))
}
