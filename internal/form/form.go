// Package form converts between the locally edited draft of an event and its
// canonical, absolute-time representation.
package form

import (
	"strings"
	"time"

	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/model"
)

// LocalLayout is the datetime-local input format (no zone).
const LocalLayout = "2006-01-02T15:04"

const (
	dateLayout        = "2006-01-02"
	localSecondLayout = "2006-01-02T15:04:05"

	allDayStartClock = "T09:00"
	allDayEndClock   = "T10:00"
)

// Draft is the editable, timezone-naive form of an event.
type Draft struct {
	Title       string
	Description string
	Location    string
	Start       string // LocalLayout
	End         string // LocalLayout
	AllDay      bool
	Color       string
	Attendees   string // comma separated
}

// NewDraft returns an empty draft with the default color.
func NewDraft() Draft {
	return Draft{Color: model.DefaultColor}
}

// FormatLocalInput renders t as wall-clock time in loc.
func FormatLocalInput(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(orLocal(loc)).Format(LocalLayout)
}

// ParseLocalInput interprets s as wall-clock time in loc. It also accepts
// seconds, a bare date (midnight) and RFC 3339 values with an explicit zone.
func ParseLocalInput(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc = orLocal(loc)
	if t, err := time.ParseInLocation(LocalLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localSecondLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// SplitAttendees turns "a, b,, c" into [a b c]. Whitespace-only input yields
// an empty, non-nil slice.
func SplitAttendees(text string) []string {
	out := []string{}
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinAttendees is the inverse of SplitAttendees.
func JoinAttendees(list []string) string {
	return strings.Join(list, ", ")
}

// ToDraft projects a stored event into its editable form.
func ToDraft(ev model.Event, loc *time.Location) Draft {
	color := ev.Color
	if color == "" {
		color = model.DefaultColor
	}
	return Draft{
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       FormatLocalInput(ev.Start, loc),
		End:         FormatLocalInput(ev.End, loc),
		AllDay:      ev.AllDay,
		Color:       color,
		Attendees:   JoinAttendees(ev.Attendees),
	}
}

// FromDraft validates d and converts it into a canonical create payload.
func FromDraft(d Draft, loc *time.Location) (model.EventInput, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.EventInput{}, errs.Invalid("title", "Please enter an event title")
	}
	if strings.TrimSpace(d.Start) == "" {
		return model.EventInput{}, errs.Invalid("start", "Please select a start date and time")
	}
	if strings.TrimSpace(d.End) == "" {
		return model.EventInput{}, errs.Invalid("end", "Please select an end date and time")
	}
	start, err := ParseLocalInput(d.Start, loc)
	if err != nil {
		return model.EventInput{}, errs.Invalid("start", "Invalid date format")
	}
	end, err := ParseLocalInput(d.End, loc)
	if err != nil {
		return model.EventInput{}, errs.Invalid("end", "Invalid date format")
	}
	if !end.After(start) {
		return model.EventInput{}, errs.Invalid("end", "End date must be after start date")
	}

	color := strings.TrimSpace(d.Color)
	if color == "" {
		color = model.DefaultColor
	}
	return model.EventInput{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Location:    strings.TrimSpace(d.Location),
		Start:       start.UTC().Format(time.RFC3339),
		End:         end.UTC().Format(time.RFC3339),
		AllDay:      d.AllDay,
		Color:       color,
		Attendees:   SplitAttendees(d.Attendees),
	}, nil
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
