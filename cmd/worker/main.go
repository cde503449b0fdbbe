package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/khoahotran/jutjub/adapters/api"
	"github.com/khoahotran/jutjub/adapters/cache"
	"github.com/khoahotran/jutjub/adapters/event"
	feedUC "github.com/khoahotran/jutjub/internal/application/usecase/feed"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

const consumerGroup = "jutjub-thumbnail-warmer"

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("FATAL: cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting jutjub worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("KAFKA_BROKERS is required for the worker", nil)
	}

	// Thumbnail cache
	thumbCache, closeCache := cache.NewThumbnailCache(cfg, appLogger)
	defer closeCache()

	// API client
	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  appLogger,
	})
	if err != nil {
		appLogger.Fatal("Cannot create API client", err)
	}

	// Worker Use Case
	thumbnailUC := feedUC.NewGetThumbnailUseCase(client, thumbCache, cfg.Redis.TTL, appLogger)
	processEventUC := feedUC.NewProcessVideoEventUseCase(thumbnailUC, thumbCache, appLogger)

	// Kafka Consumer
	consumer := event.NewConsumer(cfg.Kafka.Brokers, consumerGroup, appLogger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx, processEventUC.Execute); err != nil {
		appLogger.Error("Worker stopped", err)
	}
	appLogger.Info("Worker shut down")
}
