package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/model"
)

// MsgRequired is reported when any of title, start or end is missing.
const MsgRequired = "Title, start date, and end date are required!"

var colorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// accepted timestamp layouts; zone-less layouts are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an absolute timestamp from a payload.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ValidateForCreate turns a create payload into an event ready for storage.
// Only the whitelisted fields of EventInput are carried over.
func ValidateForCreate(in model.EventInput) (model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Start) == "" || strings.TrimSpace(in.End) == "" {
		return model.Event{}, errs.Invalid("", MsgRequired)
	}
	start, err := ParseTimestamp(in.Start)
	if err != nil {
		return model.Event{}, errs.Invalid("start", "invalid timestamp")
	}
	end, err := ParseTimestamp(in.End)
	if err != nil {
		return model.Event{}, errs.Invalid("end", "invalid timestamp")
	}

	ev := model.Event{
		Title:       title,
		Description: in.Description,
		Location:    in.Location,
		Start:       start,
		End:         end,
		AllDay:      in.AllDay,
		Color:       strings.TrimSpace(in.Color),
		Attendees:   normalizeAttendees(in.Attendees),
	}
	if ev.Color == "" {
		ev.Color = model.DefaultColor
	}
	if in.Recurrence != nil {
		r := in.Recurrence.Clone()
		r.Normalize()
		ev.Recurrence = &r
	}
	if err := ValidateEvent(ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ValidateEvent checks the invariants of a complete event.
func ValidateEvent(ev model.Event) error {
	if strings.TrimSpace(ev.Title) == "" {
		return errs.Invalid("title", "is required")
	}
	if ev.Start.IsZero() {
		return errs.Invalid("start", "is required")
	}
	if ev.End.IsZero() {
		return errs.Invalid("end", "is required")
	}
	if !ev.End.After(ev.Start) {
		return errs.Invalid("end", "must be after start")
	}
	if !colorRe.MatchString(ev.Color) {
		return errs.Invalid("color", "must be a hex color like #1a74e8")
	}
	if ev.Recurrence != nil {
		if _, err := ev.Recurrence.Option(ev.Start); err != nil {
			return errs.Invalid("recurrence", err.Error())
		}
	}
	return nil
}

// applyPatch merges p into ev. Absent fields are untouched; null clears.
func applyPatch(ev model.Event, p model.EventPatch) (model.Event, error) {
	if p.Title.Set {
		if p.Title.Null {
			return ev, errs.Invalid("title", "cannot be cleared")
		}
		ev.Title = strings.TrimSpace(p.Title.Value)
	}
	if p.Description.Set {
		ev.Description = p.Description.Value
	}
	if p.Location.Set {
		ev.Location = p.Location.Value
	}
	if p.Start.Set {
		t, err := patchTime("start", p.Start)
		if err != nil {
			return ev, err
		}
		ev.Start = t
	}
	if p.End.Set {
		t, err := patchTime("end", p.End)
		if err != nil {
			return ev, err
		}
		ev.End = t
	}
	if p.AllDay.Set {
		ev.AllDay = p.AllDay.Value
	}
	if p.Color.Set {
		ev.Color = strings.TrimSpace(p.Color.Value)
		if ev.Color == "" {
			ev.Color = model.DefaultColor
		}
	}
	if p.Attendees.Set {
		ev.Attendees = normalizeAttendees(p.Attendees.Value)
	}
	if p.Recurrence.Set {
		if p.Recurrence.Null {
			ev.Recurrence = nil
		} else {
			r := p.Recurrence.Value.Clone()
			r.Normalize()
			ev.Recurrence = &r
		}
	}
	return ev, nil
}

func patchTime(field string, o model.Optional[string]) (time.Time, error) {
	if o.Null || strings.TrimSpace(o.Value) == "" {
		return time.Time{}, errs.Invalid(field, "cannot be cleared")
	}
	t, err := ParseTimestamp(o.Value)
	if err != nil {
		return time.Time{}, errs.Invalid(field, "invalid timestamp")
	}
	return t, nil
}

// normalizeAttendees trims entries and drops empty ones; order and duplicates are kept.
func normalizeAttendees(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
