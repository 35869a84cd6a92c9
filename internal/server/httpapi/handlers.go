package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/and161185/calendar/internal/calendar"
	"github.com/and161185/calendar/internal/errs"
	"github.com/and161185/calendar/internal/ical"
	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
	"github.com/and161185/calendar/internal/service"
)

const maxBody = 1 << 20

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if !decodeBody(w, r, &in) {
		return
	}
	ev, err := s.events.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Message: MsgCreated, Data: ev})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, "list", err)
		return
	}
	events, err := s.events.List(r.Context(), rng)
	if err != nil {
		s.writeError(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Message: MsgFetched, Data: events})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ev, err := s.events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Message: MsgFetched, Data: ev})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p model.EventPatch
	if !decodeBody(w, r, &p) {
		return
	}
	ev, err := s.events.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		s.writeError(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Message: MsgUpdated, Data: ev})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.events.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, "delete", err)
		return
	}
	writeMessage(w, http.StatusOK, MsgDeleted)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, "export", err)
		return
	}
	events, err := s.events.List(r.Context(), rng)
	if err != nil {
		s.writeError(w, r, "export", err)
		return
	}
	events = calendar.SortByStart(events)

	var buf bytes.Buffer
	if err := ical.Write(&buf, events, ical.Options{Name: s.calName, Location: s.loc}); err != nil {
		s.writeError(w, r, "export", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decodeBody reads a JSON body into v and answers 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, MsgBadJSON)
		return false
	}
	return true
}

// parseRange reads ?start=&end=. A lone bound is ignored; an unparseable one is an error.
func parseRange(r *http.Request) (repository.Range, error) {
	q := r.URL.Query()
	startS, endS := strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end"))
	var rng repository.Range
	if startS != "" {
		t, err := service.ParseTimestamp(startS)
		if err != nil {
			return rng, errs.Invalid("start", "invalid timestamp")
		}
		rng.Start = &t
	}
	if endS != "" {
		t, err := service.ParseTimestamp(endS)
		if err != nil {
			return rng, errs.Invalid("end", "invalid timestamp")
		}
		rng.End = &t
	}
	if !rng.Bounded() {
		return repository.Range{}, nil
	}
	return rng, nil
}
