// Package httputil writes JSON responses and translates domain errors to HTTP.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "civicdesk/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status and the {"error", "error_description"} envelope.
// Errors without a domain code are reported as internal errors with no description.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: string(dErrors.CodeInternal)})
		return
	}
	WriteJSON(w, StatusFor(de.Code), errorResponse{
		Error:            string(de.Code),
		ErrorDescription: de.Message,
	})
}

// StatusFor returns the HTTP status for a domain code.
// Duplicate submissions surface as 400 alongside validation failures; clients
// tell them apart by the error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeConflict:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
