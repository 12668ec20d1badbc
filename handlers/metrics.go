package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/pkg/metrics"
)

// RegisterMetrics exposes the registry at GET /metrics.
func RegisterMetrics(r gin.IRouter, m *metrics.Metrics) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
