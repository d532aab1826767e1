package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/vendalytics/backend-go/internal/cache"
	"github.com/vendalytics/backend-go/internal/config"
	"github.com/vendalytics/backend-go/internal/drive"
	"github.com/vendalytics/backend-go/internal/ingest"
	"github.com/vendalytics/backend-go/internal/repository/postgres"
	"github.com/vendalytics/backend-go/internal/service"
)

// The api binary is the lightweight ingest server: it bridges Google Drive
// spreadsheets into the sales store without carrying the full dashboard API.
func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	driveService, err := drive.NewService(context.Background(), cfg.Drive.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	summaryCache, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		log.Printf("warning: summary cache unavailable: %v", err)
		summaryCache = cache.NewNoopSummaryCache()
	}

	saleRepo := postgres.NewSaleRepository(db)
	ingestService := service.NewIngestService(
		ingest.NewNormalizer(ingest.DefaultColumnMap()),
		saleRepo,
		summaryCache,
	)
	spreadsheetIngest := drive.NewSpreadsheetIngest(driveService, ingestService)

	if cfg.Drive.Enabled && cfg.Drive.FolderID != "" {
		go func() {
			ctx := context.Background()
			n, err := spreadsheetIngest.IngestFolder(ctx, cfg.Drive.Tenant, cfg.Drive.FolderID)
			if err != nil {
				log.Printf("warning: initial drive folder ingest failed: %v", err)
			} else {
				log.Printf("initial drive folder ingest: %d file(s)", n)
			}
			watcher := drive.NewWatcher(spreadsheetIngest, cfg.Drive.Tenant, cfg.Drive.FolderID,
				time.Duration(cfg.Drive.PollSeconds)*time.Second)
			watcher.Run(ctx)
		}()
	}

	r := mux.NewRouter()
	driveHandler := drive.NewHandler(driveService, spreadsheetIngest)
	driveHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
