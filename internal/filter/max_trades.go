package filter

import "time"

// MaxTradesFilter caps concurrent positions and entries per day and per ISO week.
type MaxTradesFilter struct {
	MaxConcurrent int
	MaxPerDay     int
	MaxPerWeek    int

	today    int
	thisWeek int
	day      string
	week     int
}

func NewMaxTradesFilter(concurrent, perDay, perWeek int) *MaxTradesFilter {
	return &MaxTradesFilter{MaxConcurrent: concurrent, MaxPerDay: perDay, MaxPerWeek: perWeek}
}

// ISOWeekKey identifies the ISO-8601 week of t (weeks start Monday and week 1
// holds the year's first Thursday) as year*100+week.
func ISOWeekKey(t time.Time) int {
	year, week := t.UTC().ISOWeek()

	return year*100 + week
}

func (f *MaxTradesFilter) roll(now time.Time) {
	if day := now.UTC().Format(time.DateOnly); day != f.day {
		f.today = 0
		f.day = day
	}

	if week := ISOWeekKey(now); week != f.week {
		f.thisWeek = 0
		f.week = week
	}
}

func (f *MaxTradesFilter) Check(openTrades int, now time.Time) Result {
	f.roll(now)

	if openTrades >= f.MaxConcurrent {
		return fail("Max concurrent trades reached: %d", openTrades)
	}

	if f.today >= f.MaxPerDay {
		return fail("Max daily trades reached: %d", f.today)
	}

	if f.thisWeek >= f.MaxPerWeek {
		return fail("Max weekly trades reached: %d", f.thisWeek)
	}

	return pass()
}

// Record counts an opened trade.
func (f *MaxTradesFilter) Record(now time.Time) {
	f.roll(now)
	f.today++
	f.thisWeek++
}

// Counts returns the trades counted today and this week.
func (f *MaxTradesFilter) Counts() (day, week int) {
	return f.today, f.thisWeek
}

func (f *MaxTradesFilter) Reset() {
	f.today, f.thisWeek = 0, 0
	f.day, f.week = "", 0
}
