package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"relaybot/internal/catalog"
	"relaybot/internal/config"
	cronpkg "relaybot/internal/cron"
	"relaybot/internal/forward"
	"relaybot/internal/pkg/telegram"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}

	// --- Catalog & rotation ---
	cat, rotation, err := catalog.Load(cfg.Schedule.File)
	if err != nil {
		logger.Fatal("Failed to load schedule tables", zap.Error(err))
	}

	// --- Telegram Bot API ---
	botAPI := telegram.NewBotAPI(cfg.Bot.Token)

	// --- Forwarder ---
	forwarder := forward.New(botAPI, cfg.Bot.SourceID, cfg.Bot.Targets, logger)

	// --- Scheduler & rebuild controller ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cronpkg.NewScheduler(loc, logger)
	controller := cronpkg.NewController(scheduler, cat, rotation, forwarder, botAPI, cronpkg.ControllerOptions{
		StartHour:      cfg.Schedule.StartHour,
		IntervalHours:  cfg.Schedule.IntervalHours,
		RebuildHour:    cfg.Schedule.RebuildHour,
		HealthInterval: cfg.Schedule.HealthInterval,
		Mode:           cfg.Schedule.Mode,
	}, logger)

	logger.Info("Bot starting",
		zap.String("source", cfg.Bot.SourceID),
		zap.Strings("targets", cfg.Bot.Targets),
		zap.String("tz", cfg.Bot.Timezone),
	)
	controller.Start(ctx)

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Unwind any in-flight forward, then wait for running jobs to return.
	cancel()
	<-scheduler.Stop().Done()

	logger.Info("Bot exited")
}
