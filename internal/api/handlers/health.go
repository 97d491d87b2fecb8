package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-pkgz/lgr"
)

// HealthHandler reports whether the core's dependencies are reachable.
type HealthHandler struct {
	logger lgr.L
	checks []func() error
}

func NewHealthHandler(logger lgr.L, checks ...func() error) *HealthHandler {
	return &HealthHandler{logger: logger, checks: checks}
}

// HandleHealth
// @Summary Health check
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.checks {
		if err := check(); err != nil {
			h.logger.Logf("WARN health check failed: %v", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
