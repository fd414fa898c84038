package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthzHandler handles liveness probes (/healthz)
func (h *Handler) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: healthStatusOK}) //nolint:errcheck // Best effort response
}

// readyzHandler handles readiness probes (/readyz). It runs every
// registered dependency check and answers 503 if any fails.
func (h *Handler) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	allHealthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			checks[name] = healthStatusUnhealthy + ": " + err.Error()
			allHealthy = false
			h.logger.Warn(ctx).Err(err).Str("check", name).Msg("Readiness check failed")
			continue
		}
		checks[name] = healthStatusHealthy
	}

	response := HealthResponse{Status: healthStatusOK, Checks: checks}
	status := http.StatusOK
	if !allHealthy {
		response.Status = healthStatusUnhealthy
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // Best effort response
}
