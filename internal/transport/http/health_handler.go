package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler serves liveness checks.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a health handler reporting the given version.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}
