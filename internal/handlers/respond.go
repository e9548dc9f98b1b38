package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/caseboard/visit-scheduler/internal/database"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/services"
)

const retryAfterSeconds = 1

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var transientErr *database.TransientStorageError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "invalid input",
			"fields": validationErr.Fields,
		})
	case errors.As(err, &conflictErr):
		overlaps := conflictErr.Overlaps
		if overlaps == nil {
			overlaps = []services.Overlap{}
		}
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":         "schedule conflict",
			"offendingDays": conflictErr.OffendingDays.Days(),
			"timeReason":    conflictErr.TimeReason,
			"overlaps":      overlaps,
		})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &transientErr):
		slog.Warn("storage busy", "attempts", transientErr.Attempts, "error", transientErr.Err)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage is busy, try again"})
	default:
		slog.Error("handling request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return &services.ValidationError{Fields: map[string]string{"body": fmt.Sprintf("malformed JSON: %v", err)}}
	}
	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	text := r.URL.Query().Get(name)
	if text == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, &services.ValidationError{Fields: map[string]string{name: "must be a whole number"}}
	}
	return value, nil
}
