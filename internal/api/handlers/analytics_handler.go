package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/analytics/ranking"
	"github.com/vendalytics/backend-go/internal/domain"
	"github.com/vendalytics/backend-go/internal/service"
)

const dateLayout = "2006-01-02"

// serverError logs the underlying failure and answers with a stable message;
// internals never leak to the client.
func serverError(c *gin.Context, err error, message string) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// parseFilter builds the report filter from the request. The tenant comes
// from the X-Tenant header (set by the gateway) with a query fallback for
// local use; dates are inclusive calendar days.
func parseFilter(c *gin.Context) (domain.ReportFilter, bool) {
	tenant := strings.TrimSpace(c.GetHeader("X-Tenant"))
	if tenant == "" {
		tenant = strings.TrimSpace(c.Query("tenant"))
	}

	filter := domain.ReportFilter{
		Tenant:       tenant,
		Customer:     strings.TrimSpace(c.Query("customer")),
		Product:      strings.TrimSpace(c.Query("product")),
		CustomerType: strings.TrimSpace(c.Query("customer_type")),
	}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
			return domain.ReportFilter{}, false
		}
		filter.Start = period.StartOfDay(t)
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
			return domain.ReportFilter{}, false
		}
		filter.End = period.EndOfDay(t)
	}

	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.ReportFilter{}, false
	}
	return filter, true
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	summary, err := h.analytics.DashboardSummary(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err, "failed to build dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) GetKPIs(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	kpis, err := h.analytics.KPIs(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err, "failed to compute kpis")
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (h *AnalyticsHandler) GetRankings(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	var dim ranking.Dimension
	switch c.Param("dimension") {
	case "customers":
		dim = ranking.ByCustomer
	case "products":
		dim = ranking.ByProduct
	case "customer_types":
		dim = ranking.ByCustomerType
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "dimension must be customers, products or customer_types"})
		return
	}

	entries, err := h.analytics.Rankings(c.Request.Context(), filter, dim)
	if err != nil {
		serverError(c, err, "failed to compute rankings")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *AnalyticsHandler) GetMovers(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	up, down, err := h.analytics.Movers(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err, "failed to compute movers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"up": up, "down": down})
}

func (h *AnalyticsHandler) GetEngagement(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	buckets, err := h.analytics.Engagement(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err, "failed to classify customers")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

func (h *AnalyticsHandler) GetCohort(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	months, err := h.analytics.CohortEvolution(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err, "failed to compute cohort evolution")
		return
	}
	c.JSON(http.StatusOK, months)
}

func (h *AnalyticsHandler) GetCLV(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	report, err := h.analytics.CLVReport(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err, "failed to compute clv report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) GetPivot(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	g, metric, byProduct, ok := parsePivotParams(c)
	if !ok {
		return
	}

	table, err := h.analytics.PivotTable(c.Request.Context(), filter, g, metric, byProduct)
	if err != nil {
		serverError(c, err, "failed to build pivot table")
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *AnalyticsHandler) GetPivotDrillDown(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	g, metric, byProduct, ok := parsePivotParams(c)
	if !ok {
		return
	}
	entity := c.Param("entity")
	if entity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity is required"})
		return
	}

	table, err := h.analytics.PivotDrillDown(c.Request.Context(), filter, g, metric, byProduct, entity)
	if err != nil {
		serverError(c, err, "failed to build pivot drill-down")
		return
	}
	c.JSON(http.StatusOK, table)
}

func parsePivotParams(c *gin.Context) (domain.Granularity, domain.PivotMetric, bool, bool) {
	g := domain.Granularity(c.DefaultQuery("granularity", string(domain.GranularityWeekly)))
	switch g {
	case domain.GranularityDaily, domain.GranularityWeekly, domain.GranularityMonthly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be daily, weekly or monthly"})
		return "", "", false, false
	}

	metric := domain.PivotMetric(c.DefaultQuery("metric", string(domain.PivotRevenue)))
	switch metric {
	case domain.PivotRevenue, domain.PivotQuantity, domain.PivotBoxes:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "metric must be revenue, quantity or boxes"})
		return "", "", false, false
	}

	byProduct := c.DefaultQuery("by", "customer") == "product"
	return g, metric, byProduct, true
}
