// Package ical renders events as an iCalendar feed.
package ical

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/and161185/calendar/internal/model"
)

// ProductID identifies the generator in the PRODID property.
const ProductID = "-//and161185//calendar//EN"

const propColor = ical.ComponentProperty("COLOR")

// Options tweak the generated calendar.
type Options struct {
	Name string
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
	// Location decides the calendar day of all-day events; defaults to UTC.
	Location *time.Location
}

// Build converts events into a VCALENDAR with one VEVENT per stored event.
// Recurring events carry their RRULE; occurrences are left to the consumer.
func Build(events []model.Event, opts Options) (*ical.Calendar, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	stamp := now().UTC()
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID.String())
		ve.SetDtStampTime(stamp)
		if !ev.CreatedAt.IsZero() {
			ve.SetCreatedTime(ev.CreatedAt.UTC())
		}
		if !ev.UpdatedAt.IsZero() {
			ve.SetModifiedAt(ev.UpdatedAt.UTC())
		}
		if ev.AllDay {
			// DTEND of a date-valued event is exclusive.
			ve.SetAllDayStartAt(dateIn(ev.Start, loc))
			ve.SetAllDayEndAt(dateIn(ev.End, loc).AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Color != "" {
			ve.SetProperty(propColor, ev.Color)
		}
		for _, a := range ev.Attendees {
			ve.AddAttendee(a)
		}
		if ev.Recurrence != nil {
			rule, err := ev.Recurrence.RRule(ev.Start)
			if err != nil {
				return nil, err
			}
			if rule != "" {
				ve.AddRrule(rule)
			}
		}
	}
	return cal, nil
}

// dateIn returns midnight UTC of t's calendar day in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Write serializes events to w.
func Write(w io.Writer, events []model.Event, opts Options) error {
	cal, err := Build(events, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}
