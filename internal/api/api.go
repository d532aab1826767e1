package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vendalytics/backend-go/internal/api/handlers"
	"github.com/vendalytics/backend-go/internal/api/middleware"
	"github.com/vendalytics/backend-go/internal/service"
)

type Services struct {
	Analytics *service.AnalyticsService
	Ingest    *service.IngestService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Tenant"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Analytics != nil {
			analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.GET("/dashboard", analyticsHandler.GetDashboard)
				analyticsGroup.GET("/kpis", analyticsHandler.GetKPIs)
				analyticsGroup.GET("/rankings/:dimension", analyticsHandler.GetRankings)
				analyticsGroup.GET("/movers", analyticsHandler.GetMovers)
				analyticsGroup.GET("/engagement", analyticsHandler.GetEngagement)
				analyticsGroup.GET("/cohort", analyticsHandler.GetCohort)
				analyticsGroup.GET("/clv", analyticsHandler.GetCLV)
				analyticsGroup.GET("/pivot", analyticsHandler.GetPivot)
				analyticsGroup.GET("/pivot/:entity", analyticsHandler.GetPivotDrillDown)
			}
		}

		if services.Ingest != nil {
			ingestHandler := handlers.NewIngestHandler(services.Ingest)
			apiGroup.POST("/ingest", ingestHandler.UploadCSV)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
