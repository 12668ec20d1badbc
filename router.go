package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/handlers"
	"github.com/kubecrud/items-api/internal/config"
	itemhandler "github.com/kubecrud/items-api/internal/item/handler"
	"github.com/kubecrud/items-api/internal/item/service"
	"github.com/kubecrud/items-api/pkg/metrics"
	"github.com/kubecrud/items-api/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

// routerDeps are the objects built once in main and shared by all requests.
type routerDeps struct {
	rateLimit config.RateLimitConfig
	items     *service.Service
	ready     handlers.Readiness
	metrics   *metrics.Metrics
	redis     *redis.Client
	started   time.Time
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()

	// metrics wraps everything so 404s and recovered panics are observed too
	r.Use(middleware.RequestID(), middleware.Metrics(d.metrics), middleware.Logger(), middleware.Recovery())

	handlers.RegisterHealth(r, d.ready, d.started)
	handlers.RegisterMetrics(r, d.metrics)
	handlers.RegisterSwagger(r)

	api := r.Group("/")
	if d.rateLimit.Enabled {
		if d.rateLimit.UseRedis && d.redis != nil {
			win := time.Duration(d.rateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(d.metrics, d.redis, d.rateLimit.RPS, d.rateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimitMiddleware(d.metrics, d.rateLimit.RPS, d.rateLimit.Burst))
		}
	}
	itemhandler.NewHandler(d.items).Register(api)

	return r
}
