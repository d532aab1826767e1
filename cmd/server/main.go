package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vendalytics/backend-go/internal/api"
	"github.com/vendalytics/backend-go/internal/cache"
	"github.com/vendalytics/backend-go/internal/config"
	"github.com/vendalytics/backend-go/internal/ingest"
	"github.com/vendalytics/backend-go/internal/repository/postgres"
	"github.com/vendalytics/backend-go/internal/service"
	"github.com/vendalytics/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	summaryCache, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Summary cache unavailable, running without it")
		summaryCache = cache.NewNoopSummaryCache()
	}

	saleRepo := postgres.NewSaleRepository(db)
	analyticsService := service.NewAnalyticsService(saleRepo, summaryCache, cfg.Analytics)
	ingestService := service.NewIngestService(
		ingest.NewNormalizer(ingest.DefaultColumnMap()),
		saleRepo,
		summaryCache,
	)

	router := api.NewRouter(&api.Services{
		Analytics: analyticsService,
		Ingest:    ingestService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
