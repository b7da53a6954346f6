package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/engine"
)

var errNotConfigured = errors.New("not configured")

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.log.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: code, Detail: err.Error()})
}

// classify maps engine errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest, "invalid_duration"
	case errors.Is(err, domain.ErrStepOutOfRange):
		return http.StatusBadRequest, "step_out_of_range"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrTimerNotFound):
		return http.StatusNotFound, "timer_not_found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidTimerState):
		return http.StatusConflict, "invalid_timer_state"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable, "persistence_error"
	case errors.Is(err, engine.ErrNoResponder), errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented, "not_configured"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decode reads a JSON body into dst. Malformed bodies are validation
// errors.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrValidation)
		}
		return fmt.Errorf("%w: decoding request: %v", domain.ErrValidation, err)
	}
	return nil
}
