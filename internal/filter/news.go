package filter

import (
	"math"
	"time"
)

// NewsEvent is a scheduled economic release.
type NewsEvent struct {
	Time   time.Time `yaml:"time" json:"time"`
	Title  string    `yaml:"title" json:"title"`
	Impact string    `yaml:"impact" json:"impact" jsonschema:"enum=low,enum=medium,enum=high"`
}

// NewsFilter blocks entries from StopBefore ahead of an event until StopAfter past it.
type NewsFilter struct {
	StopBefore     time.Duration
	StopAfter      time.Duration
	HighImpactOnly bool
	Events         []NewsEvent
}

func NewNewsFilter(beforeMinutes, afterMinutes int, highImpactOnly bool, events []NewsEvent) *NewsFilter {
	return &NewsFilter{
		StopBefore:     time.Duration(beforeMinutes) * time.Minute,
		StopAfter:      time.Duration(afterMinutes) * time.Minute,
		HighImpactOnly: highImpactOnly,
		Events:         events,
	}
}

func (f *NewsFilter) Check(now time.Time) Result {
	for _, ev := range f.Events {
		if f.HighImpactOnly && ev.Impact != "high" {
			continue
		}

		until := ev.Time.Sub(now)
		if until > 0 && until <= f.StopBefore {
			return fail("News event in %d minutes", int(math.Round(until.Minutes())))
		}

		since := now.Sub(ev.Time)
		if since >= 0 && since <= f.StopAfter {
			return fail("News event %d minutes ago", int(math.Round(since.Minutes())))
		}
	}

	return pass()
}
