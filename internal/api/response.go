package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ingestResponse is the success envelope for POST /webhooks.
type ingestResponse struct {
	Message   string `json:"message"`
	EventType string `json:"eventType"`
}

// errorResponse is the standard error envelope. Error carries diagnostic
// detail and is omitted for authentication failures, which stay opaque.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorResponse{Message: msg, Error: detail})
}
