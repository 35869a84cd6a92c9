package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/calendar/internal/calendar"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
	"github.com/and161185/calendar/internal/repository/memory"
	"github.com/and161185/calendar/internal/server/httpapi"
	"github.com/and161185/calendar/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := memory.NewEventRepo()
	api := httpapi.New(service.NewEventService(repo), repo, zaptest.NewLogger(t))
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func standup() model.EventInput {
	return model.EventInput{Title: "Standup", Start: "2024-03-04T09:00:00Z", End: "2024-03-04T09:30:00Z"}
}

func TestClient_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := New(newServer(t).URL+"/", nil)

	require.NoError(t, c.Health(ctx))

	ev, err := c.Create(ctx, standup())
	require.NoError(t, err)
	require.Equal(t, "Standup", ev.Title)

	got, err := c.Get(ctx, ev.ID.String())
	require.NoError(t, err)
	require.Equal(t, ev.ID, got.ID)

	upd, err := c.Update(ctx, ev.ID.String(), model.EventPatch{Title: model.Some("Retro")})
	require.NoError(t, err)
	require.Equal(t, "Retro", upd.Title)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	list, err := c.List(ctx, repository.NewRange(from, from.AddDate(0, 0, 1)))
	require.NoError(t, err)
	require.Len(t, list, 1)

	var buf bytes.Buffer
	require.NoError(t, c.Export(ctx, repository.Range{}, &buf))
	require.Contains(t, buf.String(), "SUMMARY:Retro")

	require.NoError(t, c.Delete(ctx, ev.ID.String()))
	_, err = c.Get(ctx, ev.ID.String())
	require.True(t, IsNotFound(err))
}

func TestClient_ErrorsCarryServerMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := New(newServer(t).URL, nil)

	_, err := c.Create(ctx, model.EventInput{Title: "x"})
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, http.StatusBadRequest, ae.Status)
	require.Equal(t, service.MsgRequired, ae.Message)

	_, err = c.Get(ctx, "missing")
	require.True(t, errors.As(err, &ae))
	require.Equal(t, httpapi.MsgNotFound, ae.Message)
}

func TestClient_FallbackMessage(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>proxy</html>"))
	}))
	defer ts.Close()

	_, err := New(ts.URL, nil).List(context.Background(), repository.Range{})
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, http.StatusBadGateway, ae.Status)
	require.Equal(t, MsgUnexpected, ae.Message)
}

type countingAPI struct {
	API
	lists atomic.Int32
	fail  atomic.Bool
}

func (c *countingAPI) List(ctx context.Context, r repository.Range) ([]model.Event, error) {
	c.lists.Add(1)
	if c.fail.Load() {
		return nil, &APIError{Status: 500, Message: "Internal server error!"}
	}
	return c.API.List(ctx, r)
}

func TestCache_ReadThroughAndRefetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &countingAPI{API: New(newServer(t).URL, nil)}
	cache := NewCache(api)

	require.True(t, cache.FetchedAt().IsZero())
	events, err := cache.Events(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
	_, _ = cache.Events(ctx)
	require.Equal(t, int32(1), api.lists.Load())

	ev, err := cache.Create(ctx, standup())
	require.NoError(t, err)
	require.Equal(t, int32(2), api.lists.Load())

	events, _ = cache.Events(ctx)
	require.Len(t, events, 1)
	require.Equal(t, ev.ID, events[0].ID)

	_, err = cache.Update(ctx, ev.ID.String(), model.EventPatch{Title: model.Some("Retro")})
	require.NoError(t, err)
	events, _ = cache.Events(ctx)
	require.Equal(t, "Retro", events[0].Title)

	require.NoError(t, cache.Delete(ctx, ev.ID.String()))
	events, _ = cache.Events(ctx)
	require.Empty(t, events)
	require.Equal(t, int32(4), api.lists.Load())
}

func TestCache_FailedMutationKeepsMirror(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &countingAPI{API: New(newServer(t).URL, nil)}
	cache := NewCache(api)

	_, err := cache.Create(ctx, standup())
	require.NoError(t, err)
	calls := api.lists.Load()

	_, err = cache.Create(ctx, model.EventInput{Title: "bad"})
	require.Error(t, err)
	_, err = cache.Update(ctx, "missing", model.EventPatch{Title: model.Some("x")})
	require.True(t, IsNotFound(err))
	require.Equal(t, calls, api.lists.Load())

	events, err := cache.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	api.fail.Store(true)
	cache.Invalidate()
	_, err = cache.Events(ctx)
	require.Error(t, err)
}

func TestCache_RefetchFailureAfterWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &countingAPI{API: New(newServer(t).URL, nil)}
	cache := NewCache(api)

	_, err := cache.Events(ctx)
	require.NoError(t, err)
	api.fail.Store(true)

	ev, err := cache.Create(ctx, standup())
	require.NoError(t, err)
	require.Equal(t, "Standup", ev.Title)

	_, err = cache.Update(ctx, ev.ID.String(), model.EventPatch{Title: model.Some("Retro")})
	require.NoError(t, err)

	// The mirror was dropped, so reads go back to the server.
	_, err = cache.Events(ctx)
	require.Error(t, err)

	api.fail.Store(false)
	events, err := cache.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Retro", events[0].Title)

	api.fail.Store(true)
	require.NoError(t, cache.Delete(ctx, ev.ID.String()))
	api.fail.Store(false)
	events, err = cache.Events(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestCache_MonthAndWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewCache(New(newServer(t).URL, nil))

	_, err := cache.Create(ctx, standup())
	require.NoError(t, err)

	g, err := cache.Month(ctx, 2024, time.March, time.UTC, calendar.GridOptions{})
	require.NoError(t, err)
	require.Equal(t, "March 2024", g.Title())
	day4 := g.Cells[g.Leading()+3]
	require.Equal(t, 1, day4.Count)

	in, err := cache.InWindow(ctx, calendar.Day(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), time.UTC))
	require.NoError(t, err)
	require.Empty(t, in)
}
