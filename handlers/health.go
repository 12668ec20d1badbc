package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/internal/startup"
)

// Readiness reports schema initialization progress; *startup.Sequencer
// implements it.
type Readiness interface {
	State() startup.State
	Attempts() int
}

// RegisterHealth mounts the liveness and readiness probes.
//   - GET /healthz -> always 200; it does not touch the database
//   - GET /readyz  -> 200 once the schema is ready, 503 while pending or after
//     the startup budget ran out
func RegisterHealth(r gin.IRouter, ready Readiness, started time.Time) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/readyz", func(c *gin.Context) {
		state := ready.State()
		body := gin.H{
			"status":   state.String(),
			"deps":     gin.H{"database": state.String()},
			"attempts": ready.Attempts(),
			"uptime":   time.Since(started).Round(time.Second).String(),
		}
		if state != startup.Ready {
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}
