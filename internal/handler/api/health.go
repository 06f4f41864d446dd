package api

import (
	"net/http"
	"os"
)

// Root handles GET /. A minimal liveness probe.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Job board API"})
}

// HealthResponse reports the status of the service and its dependencies.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /health. Verifies database connectivity and that the
// uploads directory is present; returns 503 when either check fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"uploads":  "ok",
	}
	healthy := true

	if err := h.db.PingContext(r.Context()); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if info, err := os.Stat(h.resumes.UploadDir()); err != nil || !info.IsDir() {
		checks["uploads"] = "missing"
		healthy = false
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, statusCode, HealthResponse{Status: status, Checks: checks})
}
