// Package service contains the application service for calendar events.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

// EventService is the persistence gateway for events.
type EventService interface {
	// Create validates the payload and stores a new event.
	Create(ctx context.Context, in model.EventInput) (model.Event, error)
	// Get returns a single event by ID.
	Get(ctx context.Context, id string) (model.Event, error)
	// List returns all events, or those overlapping a bounded range.
	List(ctx context.Context, r repository.Range) ([]model.Event, error)
	// Update merges a patch into the stored event and validates the result.
	Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error)
	// Delete removes an event; deleting an absent ID succeeds.
	Delete(ctx context.Context, id string) error
}

type EventServiceImpl struct {
	repo repository.EventRepository
}

// NewEventService constructs EventService over a repository.
func NewEventService(repo repository.EventRepository) *EventServiceImpl {
	return &EventServiceImpl{repo: repo}
}

// Create validates input and delegates the insert to the repository.
func (s *EventServiceImpl) Create(ctx context.Context, in model.EventInput) (model.Event, error) {
	ev, err := ValidateForCreate(in)
	if err != nil {
		return model.Event{}, err
	}
	if err := s.repo.Create(ctx, &ev); err != nil {
		return model.Event{}, internal("create event", err)
	}
	return ev, nil
}

// Get fetches a single event; malformed IDs are reported as not found.
func (s *EventServiceImpl) Get(ctx context.Context, id string) (model.Event, error) {
	uid, err := uuid.FromString(id)
	if err != nil {
		return model.Event{}, errs.ErrNotFound
	}
	ev, err := s.repo.Get(ctx, uid)
	if err != nil {
		return model.Event{}, classify("get event", err)
	}
	return *ev, nil
}

// List never fails because a bound is missing; it falls back to all events.
func (s *EventServiceImpl) List(ctx context.Context, r repository.Range) ([]model.Event, error) {
	if !r.Bounded() {
		r = repository.Range{}
	}
	out, err := s.repo.List(ctx, r)
	if err != nil {
		return nil, internal("list events", err)
	}
	if out == nil {
		out = []model.Event{}
	}
	return out, nil
}

// Update loads, merges, validates and writes back.
func (s *EventServiceImpl) Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error) {
	uid, err := uuid.FromString(id)
	if err != nil {
		return model.Event{}, errs.ErrNotFound
	}
	cur, err := s.repo.Get(ctx, uid)
	if err != nil {
		return model.Event{}, classify("update event", err)
	}
	next, err := applyPatch(cur.Clone(), p)
	if err != nil {
		return model.Event{}, err
	}
	if err := ValidateEvent(next); err != nil {
		return model.Event{}, err
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		return model.Event{}, classify("update event", err)
	}
	return next, nil
}

// Delete is idempotent: an absent or malformed ID is not an error.
func (s *EventServiceImpl) Delete(ctx context.Context, id string) error {
	uid, err := uuid.FromString(id)
	if err != nil {
		return nil
	}
	if _, err := s.repo.Delete(ctx, uid); err != nil {
		return internal("delete event", err)
	}
	return nil
}

func classify(op string, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrNotFound
	}
	return internal(op, err)
}

func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errs.ErrInternal, err)
}
