// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/calendar/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Range is an optional [Start, End) filter. It applies only when both bounds are set.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// NewRange builds a bounded range.
func NewRange(start, end time.Time) Range {
	return Range{Start: &start, End: &end}
}

// Bounded reports whether both bounds are present.
func (r Range) Bounded() bool { return r.Start != nil && r.End != nil }

// EventRepository provides the canonical storage of events.
type EventRepository interface {
	// Create assigns ID, CreatedAt and UpdatedAt and inserts the event.
	Create(ctx context.Context, ev *model.Event) error
	// Get loads an event by ID or returns errs.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// List returns events overlapping a bounded range (start < r.End AND end > r.Start),
	// or all events otherwise, in storage order.
	List(ctx context.Context, r Range) ([]model.Event, error)
	// Update replaces all mutable fields and refreshes UpdatedAt; errs.ErrNotFound if absent.
	Update(ctx context.Context, ev *model.Event) error
	// Delete removes the event and reports whether a row existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
