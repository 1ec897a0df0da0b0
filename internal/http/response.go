package http

import (
	"encoding/json"
	"net/http"

	applog "tally/internal/log"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

// WriteError writes {"message": message}. Details stay in the logs.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, ErrorResponse{Message: message})
}
