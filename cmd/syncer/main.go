package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	algoliaadapter "github.com/nimafallahian/catalog-sync/internal/adapters/algolia"
	checadapter "github.com/nimafallahian/catalog-sync/internal/adapters/chec"
	esadapter "github.com/nimafallahian/catalog-sync/internal/adapters/es"
	kafkaadapter "github.com/nimafallahian/catalog-sync/internal/adapters/kafka"
	"github.com/nimafallahian/catalog-sync/internal/adapters/throttle"
	"github.com/nimafallahian/catalog-sync/internal/config"
	"github.com/nimafallahian/catalog-sync/internal/httpapi"
	"github.com/nimafallahian/catalog-sync/internal/ports"
	"github.com/nimafallahian/catalog-sync/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("service terminated with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := checadapter.NewClient(cfg.ChecAPIURL, cfg.ChecSecretKey, logger)

	var sinks ports.SinkFactory
	switch cfg.IndexBackend {
	case config.BackendElasticsearch:
		sinks = esadapter.NewSinkFactory(cfg.ElasticURLs)
	default:
		sinks = algoliaadapter.NewSinkFactory(algoliaadapter.Options{
			Host:     cfg.AlgoliaHost,
			RetryMax: 3,
			Logger:   logger,
		})
	}
	sinks = throttle.Wrap(sinks, cfg.IndexWriteRate, cfg.IndexWriteBurst)

	dispatcher := service.NewDispatcher(source, sinks, logger)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(dispatcher, config.LoadIntegration, httpapi.Options{
			RateLimit: cfg.WebhookRateLimit,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "backend", cfg.IndexBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.KafkaEnabled() {
		kConsumer, err := kafkaadapter.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		defer func() {
			if cerr := kConsumer.Close(); cerr != nil {
				logger.Error("failed to close kafka consumer", "error", cerr)
			}
		}()

		if cfg.WorkerCount > 1 {
			logger.Warn("WORKER_COUNT > 1 lets a later offset be committed while an earlier event is still retrying", "workers", cfg.WorkerCount)
		}
		svc := service.NewEventService(kConsumer, dispatcher, config.LoadIntegration, cfg.WorkerCount, logger)
		g.Go(func() error {
			logger.Info("kafka consumer started", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
			svc.Start(ctx)
			return nil
		})
	}

	return g.Wait()
}
