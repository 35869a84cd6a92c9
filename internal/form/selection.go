package form

import (
	"strings"
	"time"
)

// Selection is a range picked on a calendar grid. For all-day selections End
// is the exclusive day boundary reported by the picker.
type Selection struct {
	Start  string
	End    string
	AllDay bool
}

// FromSelection prefills a draft from a grid selection.
//
// All-day selections get fixed clock times: the start day at 09:00 and the
// last selected day at 10:00, where the last day is the exclusive end minus
// one day. Timed selections keep their instants.
func FromSelection(sel Selection, loc *time.Location) (Draft, error) {
	d := NewDraft()
	d.AllDay = sel.AllDay

	if !sel.AllDay {
		start, err := ParseLocalInput(sel.Start, loc)
		if err != nil {
			return Draft{}, err
		}
		end := start
		if strings.TrimSpace(sel.End) != "" {
			if end, err = ParseLocalInput(sel.End, loc); err != nil {
				return Draft{}, err
			}
		}
		d.Start = FormatLocalInput(start, loc)
		d.End = FormatLocalInput(end, loc)
		return d, nil
	}

	startDay, err := datePart(sel.Start, loc)
	if err != nil {
		return Draft{}, err
	}
	lastDay := startDay
	if strings.TrimSpace(sel.End) != "" {
		endDay, err := datePart(sel.End, loc)
		if err != nil {
			return Draft{}, err
		}
		lastDay = endDay.AddDate(0, 0, -1)
	}
	d.Start = startDay.Format(dateLayout) + allDayStartClock
	d.End = lastDay.Format(dateLayout) + allDayEndClock
	return d, nil
}

// datePart keeps only the calendar date of s in loc.
func datePart(s string, loc *time.Location) (time.Time, error) {
	t, err := ParseLocalInput(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	t = t.In(orLocal(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}
