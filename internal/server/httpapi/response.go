package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/calendar/internal/errs"
)

// Response messages.
const (
	MsgCreated  = "Event created successfully!"
	MsgFetched  = "Event fetched"
	MsgUpdated  = "Event updated successfully!"
	MsgDeleted  = "Event deleted successfully!"
	MsgNotFound = "Event not found!"
	MsgInternal = "Internal server error!"
	MsgBadJSON  = "Invalid JSON body"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Message: msg})
}

// writeError maps service errors to status codes. Internal details are only logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, errs.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		writeMessage(w, http.StatusNotFound, MsgNotFound)
	default:
		s.log.Error("request failed",
			zap.String("op", op),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, MsgInternal)
	}
}
