// Command initdb creates the items schema and exits. It uses the same retry
// budget as the API server, which makes it usable as an init container.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kubecrud/items-api/internal/config"
	"github.com/kubecrud/items-api/internal/database"
	"github.com/kubecrud/items-api/internal/startup"
	"github.com/kubecrud/items-api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Errorf("initdb: load config: %v", err)
		return 1
	}
	logger.Init(cfg.Log.Level, cfg.Server.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.NewStore(ctx, cfg.Database.StoreConfig())
	if err != nil {
		logger.Errorf("initdb: %v", err)
		return 1
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		logger.Warnf("initdb: database not reachable yet, retrying: %v", err)
	} else {
		logger.Infof("initdb: database reachable")
	}

	seq := startup.New(store.InitializeSchema, startup.Config{
		MaxAttempts: cfg.Startup.MaxAttempts,
		RetryDelay:  cfg.Startup.RetryDelay,
	})
	if err := seq.Run(ctx); err != nil {
		logger.Errorf("initdb: %v", err)
		return 1
	}
	logger.Infof("initdb: items schema ready on %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	return 0
}
