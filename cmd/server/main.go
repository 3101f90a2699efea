package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"jobpilot/internal/app"
	"jobpilot/internal/config"
	"jobpilot/internal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.NewContainer(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to bootstrap app", zap.Error(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			lg.Warn("cleanup error", zap.Error(err))
		}
	}()

	if _, err := c.Migrate(ctx); err != nil {
		lg.Fatal("failed to apply migrations", zap.Error(err))
	}

	if err := app.Serve(ctx, c); err != nil {
		lg.Error("server error", zap.Error(err))
	}
}
