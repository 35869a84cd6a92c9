// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// DefaultColor is the brand blue assigned to events created without a color.
const DefaultColor = "#1a74e8"

// Event is a titled, time-bounded calendar entry.
type Event struct {
	ID          uuid.UUID   `json:"id"` // store-assigned, immutable
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"` // strictly after Start
	AllDay      bool        `json:"allDay"`
	Color       string      `json:"color"`
	Attendees   []string    `json:"attendees"` // display order, duplicates kept
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate it without aliasing store state.
func (e Event) Clone() Event {
	out := e
	if e.Attendees != nil {
		out.Attendees = append([]string(nil), e.Attendees...)
	}
	if e.Recurrence != nil {
		r := e.Recurrence.Clone()
		out.Recurrence = &r
	}
	return out
}

// EventInput is the create payload as received from a client.
// Start and End stay textual so that missing and unparseable values can be
// reported separately.
type EventInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	AllDay      bool        `json:"allDay,omitempty"`
	Color       string      `json:"color,omitempty"`
	Attendees   []string    `json:"attendees,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
}

// EventPatch is an update payload. Absent fields are left unchanged; an
// explicit null clears the field where clearing is meaningful.
type EventPatch struct {
	Title       Optional[string]     `json:"title,omitzero"`
	Description Optional[string]     `json:"description,omitzero"`
	Location    Optional[string]     `json:"location,omitzero"`
	Start       Optional[string]     `json:"start,omitzero"`
	End         Optional[string]     `json:"end,omitzero"`
	AllDay      Optional[bool]       `json:"allDay,omitzero"`
	Color       Optional[string]     `json:"color,omitzero"`
	Attendees   Optional[[]string]   `json:"attendees,omitzero"`
	Recurrence  Optional[Recurrence] `json:"recurrence,omitzero"`
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Location.Set &&
		!p.Start.Set && !p.End.Set && !p.AllDay.Set && !p.Color.Set &&
		!p.Attendees.Set && !p.Recurrence.Set
}
