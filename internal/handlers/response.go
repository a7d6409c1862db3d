package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
	"github.com/jwebster45206/wod-sheets/pkg/track"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, worker.ErrSessionNotFound),
		errors.Is(err, sheet.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, sheet.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, sheet.ErrActionNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, sheet.ErrUnknownTrack),
		errors.Is(err, sheet.ErrUnknownField),
		errors.Is(err, sheet.ErrInvalidRoll),
		errors.Is(err, dice.ErrInvalidArgument),
		errors.Is(err, track.ErrInvalidBinding):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleError writes err with its mapped status. Server errors are logged at
// error level and their text is not sent to the client.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, logger, status, "Internal server error")
		return
	}
	logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeError(w, logger, status, err.Error())
}

func pathID(r *http.Request, key string) (uuid.UUID, error) {
	raw := mux.Vars(r)[key]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
