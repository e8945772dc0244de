package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/directory-service/internal/repository"
)

const readinessTimeout = 2 * time.Second

// Check is one dependency the readiness probe pings, such as the database
// or the count cache.
type Check struct {
	Name   string
	Pinger repository.Pinger
}

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	checks []Check
}

func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness only proves the process answers.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness pings every check and reports each result; one failure makes the
// whole service unavailable.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	ready := true
	for _, chk := range h.checks {
		if err := chk.Pinger.Ping(ctx); err != nil {
			results[chk.Name] = err.Error()
			ready = false
			continue
		}
		results[chk.Name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}
