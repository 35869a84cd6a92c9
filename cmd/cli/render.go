package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/and161185/calendar/internal/calendar"
	"github.com/and161185/calendar/internal/form"
	"github.com/and161185/calendar/internal/model"
)

const clock = "15:04"

// eventLine is the one-line summary used by list.
func eventLine(ev model.Event, loc *time.Location) string {
	return fmt.Sprintf("%s  %s  %s", ev.ID, span(ev, loc), ev.Title)
}

func span(ev model.Event, loc *time.Location) string {
	start, end := ev.Start.In(loc), ev.End.In(loc)
	if ev.AllDay {
		if sameDay(start, end) {
			return start.Format("2006-01-02") + " all day"
		}
		return start.Format("2006-01-02") + ".." + end.Format("2006-01-02") + " all day"
	}
	if sameDay(start, end) {
		return start.Format("2006-01-02 ") + start.Format(clock) + "-" + end.Format(clock)
	}
	return form.FormatLocalInput(ev.Start, loc) + ".." + form.FormatLocalInput(ev.End, loc)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// renderAgenda prints events grouped under day headings.
func renderAgenda(w io.Writer, events []model.Event, loc *time.Location) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	var last string
	for _, ev := range events {
		head := ev.Start.In(loc).Format("Mon, Jan 2 2006")
		if head != last {
			if last != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, head)
			last = head
		}
		when := "all day"
		if !ev.AllDay {
			when = ev.Start.In(loc).Format(clock) + "-" + ev.End.In(loc).Format(clock)
		}
		line := fmt.Sprintf("  %-11s %s", when, ev.Title)
		if ev.Location != "" {
			line += " @ " + ev.Location
		}
		fmt.Fprintln(w, line)
	}
}

// renderMonth prints a 7-column grid. Days with events show their count;
// today is bracketed.
func renderMonth(w io.Writer, g calendar.Grid) {
	fmt.Fprintln(w, g.Title())
	fmt.Fprintln(w, "  Su    Mo    Tu    We    Th    Fr    Sa")
	for _, week := range g.Weeks() {
		var b strings.Builder
		for _, c := range week {
			b.WriteString(cellText(c))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func cellText(c *calendar.Cell) string {
	if c == nil {
		return "      "
	}
	day := fmt.Sprintf("%2d", c.Day())
	if c.IsToday {
		day = "[" + strings.TrimSpace(day) + "]"
		if len(day) < 4 {
			day = " " + day
		}
	} else {
		day = " " + day + " "
	}
	mark := "  "
	if c.HasEvents() {
		if c.Count > 9 {
			mark = "+ "
		} else {
			mark = fmt.Sprintf("%d ", c.Count)
		}
	}
	return day + mark
}

func renderEvent(w io.Writer, ev model.Event, loc *time.Location) {
	fmt.Fprintf(w, "ID:          %s\n", ev.ID)
	fmt.Fprintf(w, "Title:       %s\n", ev.Title)
	fmt.Fprintf(w, "When:        %s\n", span(ev, loc))
	if ev.Location != "" {
		fmt.Fprintf(w, "Location:    %s\n", ev.Location)
	}
	if ev.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", ev.Description)
	}
	if len(ev.Attendees) > 0 {
		fmt.Fprintf(w, "Attendees:   %s\n", form.JoinAttendees(ev.Attendees))
	}
	fmt.Fprintf(w, "Color:       %s\n", ev.Color)
	if ev.Recurrence != nil {
		if rule, err := ev.Recurrence.RRule(ev.Start); err == nil && rule != "" {
			fmt.Fprintf(w, "Repeats:     %s\n", rule)
		}
	}
}

type dayJSON struct {
	Date    string        `json:"date"`
	Count   int           `json:"count"`
	IsToday bool          `json:"isToday,omitempty"`
	Events  []model.Event `json:"events"`
}

type monthOut struct {
	Title   string     `json:"title"`
	Leading int        `json:"leading"`
	Days    []*dayJSON `json:"days"`
}

func monthJSON(g calendar.Grid) monthOut {
	out := monthOut{Title: g.Title(), Leading: g.Leading()}
	for _, c := range g.Cells {
		if c == nil {
			continue
		}
		out.Days = append(out.Days, &dayJSON{
			Date:    c.Date.Format("2006-01-02"),
			Count:   c.Count,
			IsToday: c.IsToday,
			Events:  c.Events,
		})
	}
	return out
}
