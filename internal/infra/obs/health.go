package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes endpoints for liveness and readiness checks.
// Readiness aggregates per-dependency probes (mongo, kafka, redis).
type HealthHandlers struct {
	Checks map[string]func() error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	for name, check := range h.Checks {
		if check == nil {
			continue
		}
		if err := check(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "check": name, "error": err.Error()})
			return
		}
	}
	c.Status(http.StatusOK)
}
