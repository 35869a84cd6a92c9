// Package calendar holds the time-range logic shared by the server and the
// client: interval overlap, month grid projection and agenda ordering.
package calendar

import (
	"time"

	"github.com/and161185/calendar/internal/model"
)

// Bound selects how an event's end is compared with a window's start.
type Bound int

const (
	// ExclusiveEnd treats intervals as half-open: an event ending exactly at
	// the window start does not overlap it.
	ExclusiveEnd Bound = iota
	// InclusiveEnd also matches events whose end equals the window start.
	InclusiveEnd
)

// Window is a [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Day returns the window covering the calendar day of t in loc.
func Day(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Overlaps reports whether [start, end] intersects w under bound b.
func Overlaps(start, end time.Time, w Window, b Bound) bool {
	if !start.Before(w.End) {
		return false
	}
	if b == InclusiveEnd {
		return !end.Before(w.Start)
	}
	return end.After(w.Start)
}

// Contains reports whether ev intersects w under bound b.
func (w Window) Contains(ev model.Event, b Bound) bool {
	return Overlaps(ev.Start, ev.End, w, b)
}

// Filter returns the events intersecting w, preserving input order.
func Filter(events []model.Event, w Window, b Bound) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if w.Contains(ev, b) {
			out = append(out, ev)
		}
	}
	return out
}
