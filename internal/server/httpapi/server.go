// Package httpapi exposes the event service over HTTP/JSON.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/calendar/internal/service"
)

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the event service into HTTP handlers.
type Server struct {
	events   service.EventService
	store    Pinger
	log      *zap.Logger
	calName  string
	loc      *time.Location
	mux      *http.ServeMux
	pingWait time.Duration
}

// Option customizes a Server.
type Option func(*Server)

// WithCalendarName sets X-WR-CALNAME of exported feeds.
func WithCalendarName(name string) Option {
	return func(s *Server) { s.calName = name }
}

// WithLocation sets the zone that decides the day of exported all-day events.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New constructs the HTTP API over the given service and store.
func New(events service.EventService, store Pinger, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		events:   events,
		store:    store,
		log:      log,
		calName:  "Calendar",
		loc:      time.UTC,
		mux:      http.NewServeMux(),
		pingWait: 2 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/event/create", s.handleCreate)
	s.mux.HandleFunc("GET /api/event", s.handleList)
	s.mux.HandleFunc("GET /api/event/{$}", s.handleList)
	s.mux.HandleFunc("GET /api/event/export.ics", s.handleExport)
	s.mux.HandleFunc("GET /api/event/{id}", s.handleGet)
	s.mux.HandleFunc("PUT /api/event/{id}", s.handleUpdate)
	s.mux.HandleFunc("DELETE /api/event/{id}", s.handleDelete)
}

// Handler returns the routed handler wrapped with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return Logging(s.log)(Recover(s.log)(s.mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.pingWait)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.log.Warn("health: store ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNAVAILABLE"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
