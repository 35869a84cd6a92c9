package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/calendar/internal/model"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(title, start, end string) model.Event {
	return model.Event{Title: title, Start: at(start), End: at(end)}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	t.Parallel()

	e := ev("x", "2024-01-10T10:00:00Z", "2024-01-10T12:00:00Z")

	in := Window{Start: at("2024-01-10T11:00:00Z"), End: at("2024-01-10T13:00:00Z")}
	require.True(t, in.Contains(e, ExclusiveEnd))

	touching := Window{Start: at("2024-01-10T12:00:00Z"), End: at("2024-01-10T14:00:00Z")}
	require.False(t, touching.Contains(e, ExclusiveEnd))
	require.True(t, touching.Contains(e, InclusiveEnd))

	before := Window{Start: at("2024-01-10T08:00:00Z"), End: at("2024-01-10T10:00:00Z")}
	require.False(t, before.Contains(e, ExclusiveEnd))
	require.False(t, before.Contains(e, InclusiveEnd))

	covering := Window{Start: at("2024-01-01T00:00:00Z"), End: at("2024-02-01T00:00:00Z")}
	require.True(t, covering.Contains(e, ExclusiveEnd))
}

func TestFilter_PreservesOrder(t *testing.T) {
	t.Parallel()

	events := []model.Event{
		ev("late", "2024-01-10T15:00:00Z", "2024-01-10T16:00:00Z"),
		ev("out", "2024-01-11T15:00:00Z", "2024-01-11T16:00:00Z"),
		ev("early", "2024-01-10T08:00:00Z", "2024-01-10T09:00:00Z"),
	}
	got := Filter(events, Day(at("2024-01-10T12:00:00Z"), time.UTC), ExclusiveEnd)
	require.Len(t, got, 2)
	require.Equal(t, "late", got[0].Title)
	require.Equal(t, "early", got[1].Title)

	empty := Filter(nil, Day(at("2024-01-10T12:00:00Z"), time.UTC), ExclusiveEnd)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestMonthGrid_31DaysStartingWednesday(t *testing.T) {
	t.Parallel()

	// January 2025 starts on a Wednesday.
	g := MonthGrid(2025, time.January, time.UTC, nil, GridOptions{})
	require.Len(t, g.Cells, 34)
	require.Equal(t, 3, g.Leading())
	for i := 0; i < 3; i++ {
		require.Nil(t, g.Cells[i])
	}
	require.Equal(t, 1, g.Cells[3].Day())
	require.Equal(t, time.Wednesday, g.Cells[3].Date.Weekday())
	require.Equal(t, 31, g.Cells[33].Day())
	require.Equal(t, "January 2025", g.Title())
}

func TestMonthGrid_LeapFebruaryAndWeeks(t *testing.T) {
	t.Parallel()

	// February 2024 starts on a Thursday and has 29 days.
	g := MonthGrid(2024, time.February, time.UTC, nil, GridOptions{})
	require.Equal(t, 4, g.Leading())
	require.Len(t, g.Cells, 33)

	weeks := g.Weeks()
	require.Len(t, weeks, 5)
	require.Len(t, weeks[4], 5)
	for _, w := range weeks[:4] {
		require.Len(t, w, Columns)
	}
}

func TestMonthGrid_StartsOnSundayHasNoLeading(t *testing.T) {
	t.Parallel()

	// September 2024 starts on a Sunday.
	g := MonthGrid(2024, time.September, time.UTC, nil, GridOptions{})
	require.Equal(t, 0, g.Leading())
	require.Len(t, g.Cells, 30)
}

func TestMonthGrid_CountsAndToday(t *testing.T) {
	t.Parallel()

	events := []model.Event{
		ev("standup", "2024-03-04T09:00:00Z", "2024-03-04T09:30:00Z"),
		ev("trip", "2024-03-04T18:00:00Z", "2024-03-06T10:00:00Z"),
		ev("ends at midnight", "2024-03-10T22:00:00Z", "2024-03-11T00:00:00Z"),
		ev("other month", "2024-04-02T09:00:00Z", "2024-04-02T10:00:00Z"),
	}
	today := at("2024-03-05T15:00:00Z")
	g := MonthGrid(2024, time.March, time.UTC, events, GridOptions{Today: today})

	day := func(d int) *Cell { return g.Cells[g.Leading()+d-1] }

	require.Equal(t, 2, day(4).Count)
	require.Equal(t, 1, day(5).Count)
	require.Equal(t, 1, day(6).Count)
	require.Equal(t, 0, day(7).Count)
	require.Equal(t, 1, day(10).Count)
	require.Equal(t, 0, day(11).Count)
	require.True(t, day(5).IsToday)
	require.False(t, day(4).IsToday)
	require.Equal(t, "trip", day(5).Events[0].Title)

	legacy := MonthGrid(2024, time.March, time.UTC, events, GridOptions{Bound: InclusiveEnd})
	require.Equal(t, 1, legacy.Cells[legacy.Leading()+10].Count) // March 11
}

func TestMonthGrid_UsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+9", 9*3600)
	// 2024-03-31T20:00Z is April 1st 05:00 in UTC+9.
	events := []model.Event{ev("early", "2024-03-31T20:00:00Z", "2024-03-31T21:00:00Z")}

	g := MonthGrid(2024, time.April, loc, events, GridOptions{})
	require.Equal(t, 1, g.Cells[g.Leading()].Count)
	require.Equal(t, loc, g.Cells[g.Leading()].Date.Location())
}

func TestGrid_Navigation(t *testing.T) {
	t.Parallel()

	g := MonthGrid(2024, time.January, time.UTC, nil, GridOptions{})
	y, m := g.Prev()
	require.Equal(t, 2023, y)
	require.Equal(t, time.December, m)

	g = MonthGrid(2024, time.December, time.UTC, nil, GridOptions{})
	y, m = g.Next()
	require.Equal(t, 2025, y)
	require.Equal(t, time.January, m)

	w := g.Window()
	require.Equal(t, at("2024-12-01T00:00:00Z"), w.Start)
	require.Equal(t, at("2025-01-01T00:00:00Z"), w.End)
}

func TestSortByStart(t *testing.T) {
	t.Parallel()

	events := []model.Event{
		ev("b", "2024-01-10T10:00:00Z", "2024-01-10T12:00:00Z"),
		ev("c", "2024-01-09T10:00:00Z", "2024-01-09T11:00:00Z"),
		ev("a", "2024-01-10T10:00:00Z", "2024-01-10T11:00:00Z"),
	}
	got := SortByStart(events)
	require.Equal(t, "c", got[0].Title)
	require.Equal(t, "a", got[1].Title)
	require.Equal(t, "b", got[2].Title)
	require.Equal(t, "b", events[0].Title, "input must not be reordered")

	agenda := Agenda(events, Window{Start: at("2024-01-10T00:00:00Z"), End: at("2024-01-11T00:00:00Z")})
	require.Len(t, agenda, 2)
	require.Equal(t, "a", agenda[0].Title)
}
