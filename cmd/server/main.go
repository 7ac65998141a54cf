// Package main implements the entry point for the agent API server, which
// dispatches meeting, email and generic tasks and runs the recurring digest
// and meeting reminder jobs.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/agent-api/internal/config"
	"github.com/phrazzld/agent-api/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("agent-api: %v", err)
		os.Exit(1)
	}
}

// run loads configuration, builds the application and serves until ctx is
// cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("database", cfg.Database.URL != ""),
		slog.Bool("scheduler", cfg.Scheduler.Enabled),
		slog.Bool("metrics", cfg.Metrics.Enabled))

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	router, err := app.setupRouter()
	if err != nil {
		app.cleanup(ctx)
		return err
	}

	return app.serve(ctx, router)
}
