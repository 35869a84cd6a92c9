package calendar

import (
	"fmt"
	"time"

	"github.com/and161185/calendar/internal/model"
)

// Columns is the width of a month grid (Sunday..Saturday).
const Columns = 7

// Cell is one concrete day of a month grid.
type Cell struct {
	Date    time.Time // midnight in the grid's location
	Count   int
	Events  []model.Event
	IsToday bool
}

// Day returns the day of month.
func (c *Cell) Day() int { return c.Date.Day() }

// HasEvents reports whether any event touches the day.
func (c *Cell) HasEvents() bool { return c.Count > 0 }

// GridOptions tunes MonthGrid.
type GridOptions struct {
	// Bound is the overlap rule used per day; ExclusiveEnd by default.
	Bound Bound
	// Today marks the matching cell. Zero means no highlight.
	Today time.Time
}

// Grid is a month laid out under weekday columns. Leading cells before the
// first day are nil; there is no trailing padding.
type Grid struct {
	Year     int
	Month    time.Month
	Location *time.Location
	Cells    []*Cell
}

// MonthGrid projects events onto the month (year, month) in loc.
func MonthGrid(year int, month time.Month, loc *time.Location, events []model.Event, opts GridOptions) Grid {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lead := int(first.Weekday())
	// day 0 of the next month is the last day of this one
	days := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, loc).Day()

	var today time.Time
	if !opts.Today.IsZero() {
		today = Day(opts.Today, loc).Start
	}

	cells := make([]*Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		cells = append(cells, nil)
	}
	for d := 1; d <= days; d++ {
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
		dayEvents := Filter(events, Day(date, loc), opts.Bound)
		cells = append(cells, &Cell{
			Date:    date,
			Count:   len(dayEvents),
			Events:  dayEvents,
			IsToday: !today.IsZero() && date.Equal(today),
		})
	}
	return Grid{Year: first.Year(), Month: first.Month(), Location: loc, Cells: cells}
}

// MonthGridAt is MonthGrid for the month containing ref.
func MonthGridAt(ref time.Time, loc *time.Location, events []model.Event, opts GridOptions) Grid {
	if loc == nil {
		loc = time.Local
	}
	ref = ref.In(loc)
	return MonthGrid(ref.Year(), ref.Month(), loc, events, opts)
}

// Leading returns the number of nil cells before the first day.
func (g Grid) Leading() int {
	n := 0
	for _, c := range g.Cells {
		if c != nil {
			break
		}
		n++
	}
	return n
}

// Weeks splits the cells into rows of Columns; the last row may be short.
func (g Grid) Weeks() [][]*Cell {
	var rows [][]*Cell
	for i := 0; i < len(g.Cells); i += Columns {
		end := min(i+Columns, len(g.Cells))
		rows = append(rows, g.Cells[i:end])
	}
	return rows
}

// Window returns the range covered by the month.
func (g Grid) Window() Window {
	start := time.Date(g.Year, g.Month, 1, 0, 0, 0, 0, g.Location)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Title renders e.g. "March 2024".
func (g Grid) Title() string {
	return fmt.Sprintf("%s %d", g.Month, g.Year)
}

// Prev returns the year and month before the grid's month.
func (g Grid) Prev() (int, time.Month) {
	t := time.Date(g.Year, g.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// Next returns the year and month after the grid's month.
func (g Grid) Next() (int, time.Month) {
	t := time.Date(g.Year, g.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
