package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether one dependency is ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version string
	checks  []ReadinessCheck
}

// NewHealthHandler constructs a HealthHandler; checks may be empty when the
// process has no external dependencies.
func NewHealthHandler(version string, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Healthz handles GET /healthz: the process is up.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Readyz handles GET /readyz: every dependency answers within a short
// deadline, or the probe fails with the failing dependency named.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	ready := true
	for _, chk := range h.checks {
		if err := chk.Check(ctx); err != nil {
			status[chk.Name] = err.Error()
			ready = false
			continue
		}
		status[chk.Name] = "ok"
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"ready": ready, "checks": status})
}
