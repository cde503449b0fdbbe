package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/adapters/api"
	"github.com/khoahotran/jutjub/adapters/cache"
	"github.com/khoahotran/jutjub/adapters/event"
	httpAdapter "github.com/khoahotran/jutjub/adapters/http"
	authUC "github.com/khoahotran/jutjub/internal/application/usecase/auth"
	feedUC "github.com/khoahotran/jutjub/internal/application/usecase/feed"
	interactionUC "github.com/khoahotran/jutjub/internal/application/usecase/interaction"
	uploadUC "github.com/khoahotran/jutjub/internal/application/usecase/upload"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/pkg/auth"
	"github.com/khoahotran/jutjub/pkg/logger"
	"github.com/khoahotran/jutjub/pkg/metrics"
	"github.com/khoahotran/jutjub/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("FATAL: cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting jutjub gateway...")

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "jutjub-gateway", os.Stdout)
	if err != nil {
		appLogger.Fatal("Cannot initialize tracer", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			appLogger.Error("Failed to shutdown tracer", err)
		}
	}()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clientMetrics := metrics.NewClientMetrics(registry)

	// Infrastructure
	thumbCache, closeCache := cache.NewThumbnailCache(cfg, appLogger)
	defer closeCache()
	publisher, closePublisher := event.NewPublisher(cfg, appLogger)
	defer closePublisher()

	sessions := session.ContextStore{}
	client, err := api.New(api.Options{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		Sessions: sessions,
		Logger:   appLogger,
		Metrics:  clientMetrics,
	})
	if err != nil {
		appLogger.Fatal("Cannot create API client", err)
	}
	decoder := auth.NewTokenDecoder()

	// Use Cases
	thumbnailUC := feedUC.NewGetThumbnailUseCase(client, thumbCache, cfg.Redis.TTL, appLogger)
	videoUCs := httpAdapter.VideoUseCases{
		List:         feedUC.NewListVideosUseCase(client, appLogger),
		Get:          feedUC.NewGetVideoUseCase(client, appLogger),
		Discover:     feedUC.NewDiscoverVideosUseCase(client),
		ViewStats:    feedUC.NewGetViewStatsUseCase(client),
		Thumbnail:    thumbnailUC,
		ToggleLike:   interactionUC.NewToggleLikeUseCase(client, sessions, publisher, appLogger),
		ListComments: interactionUC.NewListCommentsUseCase(client),
		AddComment:   interactionUC.NewAddCommentUseCase(client, sessions, publisher, appLogger),
		Delete:       interactionUC.NewDeleteVideoUseCase(client, thumbCache, sessions, publisher, appLogger),
	}
	submitUC := uploadUC.NewSubmitVideoUseCase(client, sessions, publisher, clientMetrics, appLogger)
	loginUC := authUC.NewLoginUseCase(client, sessions, decoder, appLogger)
	registerUC := authUC.NewRegisterUseCase(client, appLogger)
	activateUC := authUC.NewActivateUseCase(client)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Videos:   httpAdapter.NewVideoHandler(videoUCs, appLogger),
		Uploads:  httpAdapter.NewUploadHandler(submitUC, appLogger),
		Auth:     httpAdapter.NewAuthHandler(loginUC, registerUC, activateUC, appLogger),
		Decoder:  decoder,
		Gatherer: registry,
		Logger:   appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Gateway running", zap.String("port", cfg.App.Port), zap.String("api", client.BaseURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Gateway forced to shutdown", err)
	}
}
