// Package memory provides an in-process event store used for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/calendar/internal/calendar"
	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

// EventRepo keeps events in a map and remembers insertion order for listing.
type EventRepo struct {
	mu     sync.RWMutex
	events map[uuid.UUID]model.Event
	order  []uuid.UUID
	now    func() time.Time
}

var _ repository.EventRepository = (*EventRepo)(nil)

// NewEventRepo returns an empty store.
func NewEventRepo() *EventRepo {
	return &EventRepo{
		events: make(map[uuid.UUID]model.Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *EventRepo) Create(_ context.Context, ev *model.Event) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = id
	ev.CreatedAt = now
	ev.UpdatedAt = now
	r.events[id] = ev.Clone()
	r.order = append(r.order, id)
	return nil
}

func (r *EventRepo) Get(_ context.Context, id uuid.UUID) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.events[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := ev.Clone()
	return &out, nil
}

func (r *EventRepo) List(_ context.Context, rng repository.Range) ([]model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.events[id].Clone())
	}
	if rng.Bounded() {
		out = calendar.Filter(out, calendar.Window{Start: *rng.Start, End: *rng.End}, calendar.ExclusiveEnd)
	}
	return out, nil
}

func (r *EventRepo) Update(_ context.Context, ev *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.events[ev.ID]
	if !ok {
		return errs.ErrNotFound
	}
	ev.CreatedAt = cur.CreatedAt
	ev.UpdatedAt = r.now()
	if ev.UpdatedAt.Before(cur.UpdatedAt) {
		ev.UpdatedAt = cur.UpdatedAt
	}
	r.events[ev.ID] = ev.Clone()
	return nil
}

func (r *EventRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return false, nil
	}
	delete(r.events, id)
	for i, x := range r.order {
		if x == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Ping always succeeds.
func (r *EventRepo) Ping(context.Context) error { return nil }
