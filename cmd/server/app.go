package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/agent-api/internal/config"
	"github.com/phrazzld/agent-api/internal/history"
	"github.com/phrazzld/agent-api/internal/platform/calendar"
	"github.com/phrazzld/agent-api/internal/platform/gemini"
	"github.com/phrazzld/agent-api/internal/platform/mail"
	"github.com/phrazzld/agent-api/internal/platform/observability"
	"github.com/phrazzld/agent-api/internal/platform/postgres"
	"github.com/phrazzld/agent-api/internal/scheduler"
	"github.com/phrazzld/agent-api/internal/service"
	"github.com/phrazzld/agent-api/internal/task"
)

// application holds the shared dependencies so they can be closed together.
type application struct {
	config *config.Config
	logger *slog.Logger

	db       *sql.DB
	provider *observability.Provider
	metrics  *observability.Metrics

	history     history.Store
	calendar    *calendar.Client
	mailer      *mail.Client
	interpreter *gemini.Interpreter
	dispatcher  *task.Dispatcher
	scheduler   *scheduler.Scheduler
	agent       service.AgentService
}

// newApplication wires every component from cfg. Collaborators without
// credentials run as logging mocks; without a database URL history is
// kept in memory.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	if err := app.setupMetrics(); err != nil {
		return nil, err
	}

	if err := app.setupHistory(ctx); err != nil {
		app.cleanup(ctx)
		return nil, err
	}

	var err error
	app.calendar, err = calendar.NewClient(ctx, logger, cfg.Calendar)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	app.mailer, err = mail.NewClient(logger, cfg.Mail)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	app.interpreter, err = gemini.NewInterpreter(ctx, logger, cfg.LLM)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	app.dispatcher, err = task.NewDispatcher(app.calendar, app.mailer, app.history, logger,
		task.WithInterpreter(app.interpreter),
		task.WithMetrics(app.metrics),
		task.WithDefaults(task.Defaults{Recipient: cfg.Mail.FallbackRecipient}))
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	var sched service.Scheduler
	if cfg.Scheduler.Enabled {
		app.scheduler, err = scheduler.New(schedulerConfig(cfg.Scheduler), app.history, app.calendar, app.mailer, logger,
			scheduler.WithTrigger(scheduler.NewCronTrigger(logger)),
			scheduler.WithMetrics(app.metrics))
		if err != nil {
			app.cleanup(ctx)
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		sched = app.scheduler
	}

	app.agent, err = service.NewAgentService(app.dispatcher, app.history, app.interpreter, sched, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create agent service: %w", err)
	}

	return app, nil
}

func (app *application) setupMetrics() error {
	if !app.config.Metrics.Enabled {
		app.metrics = observability.NewNoopMetrics()
		return nil
	}

	provider, err := observability.NewPrometheusProvider()
	if err != nil {
		return fmt.Errorf("failed to create metrics provider: %w", err)
	}
	metrics, err := observability.NewMetrics(provider.Meter())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	app.provider = provider
	app.metrics = metrics
	return nil
}

func (app *application) setupHistory(ctx context.Context) error {
	if app.config.Database.URL == "" {
		app.logger.Info("database URL not configured, keeping task history in memory")
		app.history = history.NewMemoryStore()
		return nil
	}

	db, err := postgres.Open(ctx, app.config.Database.URL)
	if err != nil {
		return err
	}
	app.db = db

	if err := postgres.Migrate(ctx, db, app.logger); err != nil {
		return err
	}

	store, err := postgres.NewHistoryStore(db, app.logger)
	if err != nil {
		return err
	}
	app.history = store
	app.logger.Info("Database connection established")
	return nil
}

func schedulerConfig(cfg config.SchedulerConfig) scheduler.Config {
	return scheduler.Config{
		DigestRecipient:      cfg.DigestRecipient,
		DigestHour:           cfg.DigestHour,
		DigestMinute:         cfg.DigestMinute,
		MeetingCheckInterval: cfg.MeetingCheckInterval,
		ReminderWindow:       cfg.ReminderWindow,
		ReminderDedup:        cfg.ReminderDedup,
		DedupCacheSize:       cfg.DedupCacheSize,
	}
}

// cleanup stops the scheduler and releases the database and metrics
// provider.
func (app *application) cleanup(ctx context.Context) {
	if app.agent != nil {
		app.agent.StopScheduler()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	if app.provider != nil {
		if err := app.provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			app.logger.Error("Error shutting down metrics provider", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
