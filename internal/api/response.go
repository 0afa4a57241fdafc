package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sheikh-saqib/captable-simulator/internal/captable"
	"github.com/sheikh-saqib/captable-simulator/internal/storage"
)

// errorPayload is the error body of every non-2xx response.
type errorPayload struct {
	Kind    string `json:"kind"`
	Round   *int   `json:"round,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: errorPayload{Kind: kind, Message: message}})
}

// simulationStatus maps a simulation failure to its HTTP status.
func simulationStatus(err error) int {
	var capErr *captable.Error
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.As(err, &capErr) && capErr.Kind == captable.KindInvalidArgument:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func lookupStatus(err error) (int, string) {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal_error"
}
