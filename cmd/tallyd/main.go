// Command tallyd runs the tally automation daemon: recurrence detection,
// budget monitoring, and task reminders on timers.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tallyhq/tally/internal/daemon"
	"github.com/tallyhq/tally/pkg/api"
	"github.com/tallyhq/tally/pkg/automation"
	"github.com/tallyhq/tally/pkg/config"
	"github.com/tallyhq/tally/pkg/logging"
	"github.com/tallyhq/tally/pkg/notify"
	"github.com/tallyhq/tally/pkg/store/memory"
	"github.com/tallyhq/tally/pkg/store/postgres"
)

func main() {
	logger := logging.Setup(logging.FromEnv())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var store api.Store
	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		store = memory.New()
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger.With("component", "store"))
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	default:
		logger.Error("unknown store backend", "store", cfg.Store)
		os.Exit(1)
	}

	sinks := notify.Multi{notify.NewLogSink(logger)}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.WebhookURL, logger))
		logger.Info("webhook notifications enabled", "url", cfg.WebhookURL)
	}

	engine := automation.NewEngine(store, sinks, automation.NewMemoryLedger(), nil, nil,
		logger.With("component", "automation"))

	runner := daemon.New(engine, daemon.Intervals{
		Recurrence: time.Duration(cfg.RecurrenceIntervalMin) * time.Minute,
		Budget:     time.Duration(cfg.BudgetIntervalMin) * time.Minute,
		Reminders:  time.Duration(cfg.ReminderIntervalMin) * time.Minute,
	}, logger)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}
