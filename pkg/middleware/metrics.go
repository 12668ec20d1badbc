package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/pkg/metrics"
)

// Metrics times every request and records it under the matched route
// pattern, or the raw path when nothing matched.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
