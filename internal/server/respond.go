package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"slideclaw/internal/deck"
	"slideclaw/internal/logging"
	"slideclaw/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP status codes:
// validation failures are the client's fault, missing records are 404,
// anything else is upstream.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deck.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, deck.ErrSlideNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.ServerError("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
