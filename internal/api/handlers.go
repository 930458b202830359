// Package api contains the HTTP handlers for the content studio proxy
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Handler contains the plain net/http handlers that are not part of the run API
type Handler struct {
	service string
}

// NewHandler creates a new Handler reporting the given service name
func NewHandler(service string) *Handler {
	return &Handler{service: service}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   h.service,
		Version:   Version,
	}
	writeJSON(w, http.StatusOK, status)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error but can't change response at this point
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
