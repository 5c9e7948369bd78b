package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/couchcryptid/address-verify-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/address-verify-service/internal/adapter/kafka"
	"github.com/couchcryptid/address-verify-service/internal/app"
	"github.com/couchcryptid/address-verify-service/internal/config"
	"github.com/couchcryptid/address-verify-service/internal/observability"
	"github.com/couchcryptid/address-verify-service/internal/pipeline"
	"github.com/couchcryptid/address-verify-service/internal/verify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Verification events are optional (KAFKA_ENABLED). The dispatcher outlives
	// the HTTP server so events from in-flight requests are still flushed.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	var (
		publisher  verify.Publisher
		writer     *kafkaadapter.Writer
		dispatched sync.WaitGroup
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		dispatcher := pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval, cfg.EventBufferSize)
		publisher = dispatcher

		dispatched.Add(1)
		go func() {
			defer dispatched.Done()
			if err := dispatcher.Run(dispatchCtx); err != nil {
				logger.Error("event dispatcher error", "error", err)
			}
		}()
		logger.Info("verification events enabled", "topic", cfg.KafkaVerdictTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("verification events disabled")
	}

	svc := app.NewService(cfg, publisher, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	stopDispatch()
	dispatched.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
