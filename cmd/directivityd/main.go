package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/seismoworks/directivity/internal/adapter/httpadapter"
	kafkaadapter "github.com/seismoworks/directivity/internal/adapter/kafka"
	"github.com/seismoworks/directivity/internal/config"
	"github.com/seismoworks/directivity/internal/job"
	"github.com/seismoworks/directivity/internal/observability"
	"github.com/seismoworks/directivity/internal/pipeline"
	"github.com/seismoworks/directivity/internal/resultcache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// The engine computer sits behind an optional result cache keyed on the
	// request digest (feature-flagged via RESULT_CACHE_ENABLED).
	var computer job.Computer = pipeline.NewEngineComputer(cfg.ComputeWorkers)
	if cfg.CacheEnabled {
		computer = resultcache.New(computer, cfg.ResultCacheSize, metrics)
		metrics.CacheEnabled.Set(1)
		logger.Info("result cache enabled", "cache_size", cfg.ResultCacheSize)
	} else {
		logger.Info("result cache disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(computer, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the compute pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
