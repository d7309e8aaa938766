package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brojonat/suiscope/service/config"
	"github.com/brojonat/suiscope/service/explain"
	"github.com/brojonat/suiscope/service/metrics"
	"github.com/brojonat/suiscope/service/server"
	"github.com/brojonat/suiscope/service/temporal"
	"github.com/brojonat/suiscope/service/translate"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
		"network", cfg.SuiNetwork,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsCollector := metrics.NewMetrics(nil) // nil uses default registry

	stack, err := explain.Build(ctx, cfg, metricsCollector, logger)
	if err != nil {
		logger.Error("failed to initialize explain service", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	// Temporal is optional for the server: without it the async endpoints are disabled.
	var runner temporal.Runner
	temporalClient, err := temporal.NewClient(cfg.TemporalHost, cfg.TemporalNamespace, cfg.TemporalTaskQueue, logger)
	if err != nil {
		logger.Warn("temporal unavailable, async explain disabled", "error", err)
	} else {
		defer temporalClient.Close()
		runner = temporalClient
	}

	httpServer := server.New(
		cfg.ServerAddr,
		stack.Service,
		runner,
		translate.Options{SUIPriceUSD: cfg.SUIPriceUSD, BuySellPolicy: cfg.BuySellPolicy},
		metricsCollector,
		logger,
	)

	logger.Info("server initialized, all dependencies ready",
		"sui_rpc", cfg.SuiRPCURL,
		"archive", stack.Store != nil,
		"indexer", stack.Enricher != nil,
		"llm", stack.Explainer != nil,
		"nats", stack.Publisher != nil,
		"async", runner != nil,
	)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
