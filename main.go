package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/internal/config"
	"github.com/kubecrud/items-api/internal/database"
	"github.com/kubecrud/items-api/internal/item/repository"
	"github.com/kubecrud/items-api/internal/item/service"
	"github.com/kubecrud/items-api/internal/startup"
	"github.com/kubecrud/items-api/pkg/logger"
	"github.com/kubecrud/items-api/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	os.Exit(run())
}

// onStartupExit handles the end of the startup loop. Under the exit policy a
// failed startup cancels the process context so the normal shutdown path runs
// and failed is set for the exit code.
func onStartupExit(policy string, cancel context.CancelFunc, failed *atomic.Bool) func(error) {
	return func(err error) {
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		if policy == config.OnExhaustedExit {
			logger.Errorf("startup: %v; shutting down", err)
			failed.Store(true)
			cancel()
			return
		}
		logger.Warnf("startup: serving in degraded mode, store-backed requests fail until restart")
	}
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return 1
	}
	logger.Init(cfg.Log.Level, cfg.Server.Environment)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	store, err := database.NewStore(ctx, cfg.Database.StoreConfig())
	if err != nil {
		logger.Errorf("failed to create connection pool: %v", err)
		return 1
	}
	defer store.Close()
	m.MustRegister(database.NewPoolCollector(store.Pool()))
	logger.Infof("database pool: %s:%d/%s max_conns=%d acquire_timeout=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.PoolSize, cfg.Database.AcquireTimeout)

	// Schema setup retries in the background; requests are served right away
	// and fail with 500 until it succeeds.
	seq := startup.New(store.InitializeSchema, startup.Config{
		MaxAttempts: cfg.Startup.MaxAttempts,
		RetryDelay:  cfg.Startup.RetryDelay,
	}, startup.WithMetrics(m))
	var startupFailed atomic.Bool
	seq.Start(ctx, onStartupExit(cfg.Startup.OnExhausted, stop, &startupFailed))

	var rdb *redis.Client
	if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warnf("redis %s not reachable yet (rate limiter fails open): %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("connected to redis %s for rate limiting", cfg.Redis.Addr())
		}
		cancel()
	}

	repo := repository.NewPostgresRepo(store)
	svc := service.NewService(repo, service.WithStrictReplace(cfg.Items.StrictReplace))

	r := newRouter(routerDeps{
		rateLimit: cfg.RateLimit,
		items:     svc,
		ready:     seq,
		metrics:   m,
		redis:     rdb,
		started:   startTime,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("items-api listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	code := 0
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Errorf("server failed: %v", err)
		code = 1
	}
	if startupFailed.Load() {
		code = 1
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("server forced to shutdown: %v", err)
	}
	logger.Infof("server exited")
	return code
}
