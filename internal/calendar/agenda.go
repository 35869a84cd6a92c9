package calendar

import (
	"sort"

	"github.com/and161185/calendar/internal/model"
)

// SortByStart returns a copy of events ordered by start, then end, then title.
func SortByStart(events []model.Event) []model.Event {
	out := append([]model.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return a.Title < b.Title
	})
	return out
}

// Agenda returns the events intersecting w in start order.
func Agenda(events []model.Event, w Window) []model.Event {
	return SortByStart(Filter(events, w, ExclusiveEnd))
}
