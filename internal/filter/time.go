package filter

import (
	"slices"
	"time"
)

// TimeFilter restricts trading to a daily window and a set of weekdays.
// Times are converted to Location before comparison.
type TimeFilter struct {
	// StartMinute and EndMinute are minutes after midnight. The window is
	// [start, end); start > end wraps past midnight.
	StartMinute int
	EndMinute   int
	AllowedDays []time.Weekday
	// AllowedHours, when not empty, is an additional hour allow-list.
	AllowedHours []int
	Location     *time.Location
}

// NewTimeFilter creates a filter for the [startHour, endHour) window on weekdays.
func NewTimeFilter(startHour, endHour int) *TimeFilter {
	return &TimeFilter{
		StartMinute: startHour * 60,
		EndMinute:   endHour * 60,
		AllowedDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Location:    time.UTC,
	}
}

// WithinWindow reports whether minute-of-day m is inside [start, end).
func WithinWindow(m, start, end int) bool {
	if start <= end {
		return m >= start && m < end
	}

	return m >= start || m < end
}

// IsWithinTradingHours reports whether the hour of t lies in [startHour, endHour).
func IsWithinTradingHours(t time.Time, startHour, endHour int) bool {
	return WithinWindow(t.UTC().Hour(), startHour, endHour)
}

// IsWeekend reports Saturday or Sunday in UTC.
func IsWeekend(t time.Time) bool {
	d := t.UTC().Weekday()

	return d == time.Saturday || d == time.Sunday
}

// IsTradingAllowed is Check(t).Passed.
func (f *TimeFilter) IsTradingAllowed(t time.Time) bool {
	return f.Check(t).Passed
}

func (f *TimeFilter) Check(t time.Time) Result {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}

	t = t.In(loc)

	if len(f.AllowedDays) > 0 && !slices.Contains(f.AllowedDays, t.Weekday()) {
		return fail("Trading not allowed on %s", t.Weekday())
	}

	if len(f.AllowedHours) > 0 && !slices.Contains(f.AllowedHours, t.Hour()) {
		return fail("Outside allowed trading hours")
	}

	if f.StartMinute == f.EndMinute {
		return pass()
	}

	if !WithinWindow(t.Hour()*60+t.Minute(), f.StartMinute, f.EndMinute) {
		return fail("Outside allowed trading hours")
	}

	return pass()
}
