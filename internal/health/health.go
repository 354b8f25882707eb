package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database handle
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
}

// LiveHandler reports process liveness
func LiveHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ReadyHandler reports readiness: the database must answer a ping
func ReadyHandler(db Pinger, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	}
}
