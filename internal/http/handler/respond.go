package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mixtape/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeServiceError maps domain errors onto the response taxonomy.
// Anything unrecognized is logged and surfaced as a generic 500 so no
// internal detail leaks to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		log.Printf("handler error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
