package client

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/calendar/internal/calendar"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

// API is the subset of Client used by Cache.
type API interface {
	Create(ctx context.Context, in model.EventInput) (model.Event, error)
	List(ctx context.Context, r repository.Range) ([]model.Event, error)
	Get(ctx context.Context, id string) (model.Event, error)
	Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error)
	Delete(ctx context.Context, id string) error
}

var _ API = (*Client)(nil)

// Cache mirrors the full event list. Reads load it on first use; every
// successful mutation drops the mirror and refetches it from the server.
// A failed request leaves the mirror untouched. If the refetch after a
// successful mutation fails, the mirror stays dropped and the next read loads it.
type Cache struct {
	api API

	mu        sync.RWMutex
	events    []model.Event
	loaded    bool
	fetchedAt time.Time
	now       func() time.Time
}

// NewCache wraps api.
func NewCache(api API) *Cache {
	return &Cache{api: api, now: time.Now}
}

// Events returns a copy of the mirrored list, loading it if needed.
func (c *Cache) Events(ctx context.Context) ([]model.Event, error) {
	c.mu.RLock()
	if c.loaded {
		out := cloneAll(c.events)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.events), nil
}

// InWindow returns mirrored events overlapping w.
func (c *Cache) InWindow(ctx context.Context, w calendar.Window) ([]model.Event, error) {
	events, err := c.Events(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.Filter(events, w, calendar.ExclusiveEnd), nil
}

// Month projects the mirror onto a month grid.
func (c *Cache) Month(ctx context.Context, year int, month time.Month, loc *time.Location, opts calendar.GridOptions) (calendar.Grid, error) {
	events, err := c.Events(ctx)
	if err != nil {
		return calendar.Grid{}, err
	}
	return calendar.MonthGrid(year, month, loc, events, opts), nil
}

// FetchedAt reports when the mirror was last loaded; zero if never.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Refresh replaces the mirror with the server's list.
func (c *Cache) Refresh(ctx context.Context) error {
	events, err := c.api.List(ctx, repository.Range{})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.events = events
	c.loaded = true
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}

// Invalidate drops the mirror; the next read refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.events = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *Cache) Create(ctx context.Context, in model.EventInput) (model.Event, error) {
	ev, err := c.api.Create(ctx, in)
	if err != nil {
		return model.Event{}, err
	}
	c.resync(ctx)
	return ev, nil
}

func (c *Cache) Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error) {
	ev, err := c.api.Update(ctx, id, p)
	if err != nil {
		return model.Event{}, err
	}
	c.resync(ctx)
	return ev, nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return err
	}
	c.resync(ctx)
	return nil
}

// Get always asks the server.
func (c *Cache) Get(ctx context.Context, id string) (model.Event, error) {
	return c.api.Get(ctx, id)
}

func (c *Cache) resync(ctx context.Context) {
	c.Invalidate()
	_ = c.Refresh(ctx)
}

func cloneAll(in []model.Event) []model.Event {
	out := make([]model.Event, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
