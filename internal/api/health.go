package api

import (
	"net/http"
	"time"

	"github.com/corkboard/corkboard/internal/api/respond"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	isHealthy  func() bool
	components func() map[string]bool
}

// NewHealthHandler creates a health handler backed by the given probes.
// A nil isHealthy reports healthy, which keeps tests and tools simple;
// a nil components omits the per-component breakdown.
func NewHealthHandler(isHealthy func() bool, components func() map[string]bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	return &HealthHandler{isHealthy: isHealthy, components: components}
}

// CheckHealth handles GET /api/health.
// Always returns 200; the body reports healthy/unhealthy. A non-200 means
// the handler itself failed.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	data := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if h.components != nil {
		data["components"] = h.components()
	}
	respond.WriteSuccess(w, http.StatusOK, data)
}
