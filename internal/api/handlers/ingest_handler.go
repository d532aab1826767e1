package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vendalytics/backend-go/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// UploadCSV replaces the tenant's dataset with the uploaded CSV file.
func (h *IngestHandler) UploadCSV(c *gin.Context) {
	tenant := strings.TrimSpace(c.GetHeader("X-Tenant"))
	if tenant == "" {
		tenant = strings.TrimSpace(c.Query("tenant"))
	}
	if tenant == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.ingest.IngestCSV(c.Request.Context(), tenant, file)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenant).Msg("ingest failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"skipped": result.Skipped(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":    len(result.Rows),
		"skipped": result.Skipped(),
	})
}
