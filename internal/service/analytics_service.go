package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vendalytics/backend-go/internal/analytics/clv"
	"github.com/vendalytics/backend-go/internal/analytics/cohort"
	"github.com/vendalytics/backend-go/internal/analytics/engagement"
	"github.com/vendalytics/backend-go/internal/analytics/kpi"
	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/analytics/pivot"
	"github.com/vendalytics/backend-go/internal/analytics/ranking"
	"github.com/vendalytics/backend-go/internal/cache"
	"github.com/vendalytics/backend-go/internal/config"
	"github.com/vendalytics/backend-go/internal/domain"
	"github.com/vendalytics/backend-go/internal/repository"
)

// AnalyticsService runs the analytics engine over a tenant's sale rows and
// assembles the dashboard views. The engine itself is pure; this layer owns
// data fetch, filter application and caching.
type AnalyticsService struct {
	repo       repository.SaleRepository
	cache      cache.SummaryCache
	thresholds domain.EngagementThresholds
	cohortLen  int
	topN       int
}

func NewAnalyticsService(repo repository.SaleRepository, summaryCache cache.SummaryCache, cfg config.AnalyticsConfig) *AnalyticsService {
	almost, inactive, lookback := cfg.Thresholds()
	cohortLen := cfg.CohortMonths
	if cohortLen <= 0 {
		cohortLen = cohort.DefaultMonths
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = ranking.DefaultTopN
	}
	return &AnalyticsService{
		repo:  repo,
		cache: summaryCache,
		thresholds: domain.EngagementThresholds{
			AlmostInactiveMonths: almost,
			InactiveMonths:       inactive,
			MaxLookbackMonths:    lookback,
		},
		cohortLen: cohortLen,
		topN:      topN,
	}
}

// DashboardSummary returns the combined dashboard payload, serving from the
// summary cache when the tenant's dataset has not changed.
func (s *AnalyticsService) DashboardSummary(ctx context.Context, filter domain.ReportFilter) (*domain.DashboardSummary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	version, err := s.repo.DatasetVersion(ctx, filter.Tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset version: %w", err)
	}

	if cached, hit, err := s.cache.GetSummary(ctx, filter.Tenant, version, filter); err != nil {
		log.Warn().Err(err).Str("tenant", filter.Tenant).Msg("summary cache read failed")
	} else if hit {
		return cached, nil
	}

	current, history, err := s.fetchRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	prevRange := period.InferPreviousComparable(filter.Start, filter.End)
	previous := rowsWithin(history, prevRange.Start, prevRange.End)
	up, down := ranking.Movers(current, previous, s.topN)

	summary := &domain.DashboardSummary{
		KPIs:             kpi.Compute(current, history, filter.Start, filter.End),
		TopCustomers:     ranking.Top(current, ranking.ByCustomer, s.topN),
		TopProducts:      ranking.Top(current, ranking.ByProduct, s.topN),
		TopCustomerTypes: ranking.Top(current, ranking.ByCustomerType, s.topN),
		RankingUp:        up,
		RankingDown:      down,
		Engagement:       engagement.Classify(history, filter.End, s.thresholds),
		Cohort:           cohort.Evolution(history, s.cohortLen, s.thresholds.AlmostInactiveMonths, filter.End),
		CLV:              clv.Report(history, filter.End, s.thresholds),
	}

	if err := s.cache.SetSummary(ctx, filter.Tenant, version, filter, summary); err != nil {
		log.Warn().Err(err).Str("tenant", filter.Tenant).Msg("summary cache write failed")
	}
	return summary, nil
}

// KPIs computes the headline metrics for the filter window.
func (s *AnalyticsService) KPIs(ctx context.Context, filter domain.ReportFilter) (domain.KPISummary, error) {
	if err := filter.Validate(); err != nil {
		return domain.KPISummary{}, err
	}
	current, history, err := s.fetchRows(ctx, filter)
	if err != nil {
		return domain.KPISummary{}, err
	}
	return kpi.Compute(current, history, filter.Start, filter.End), nil
}

// Rankings returns the top-N entries for one dimension.
func (s *AnalyticsService) Rankings(ctx context.Context, filter domain.ReportFilter, dim ranking.Dimension) ([]domain.RankingEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	current, _, err := s.fetchRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ranking.Top(current, dim, s.topN), nil
}

// Movers returns customers with the largest revenue gains and drops against
// the inferred previous comparable period.
func (s *AnalyticsService) Movers(ctx context.Context, filter domain.ReportFilter) (up, down []domain.RankingMover, err error) {
	if err := filter.Validate(); err != nil {
		return nil, nil, err
	}
	current, history, err := s.fetchRows(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	prevRange := period.InferPreviousComparable(filter.Start, filter.End)
	previous := rowsWithin(history, prevRange.Start, prevRange.End)
	up, down = ranking.Movers(current, previous, s.topN)
	return up, down, nil
}

// Engagement classifies the tenant's customers into activity buckets as of
// the filter's end date.
func (s *AnalyticsService) Engagement(ctx context.Context, filter domain.ReportFilter) (domain.EngagementBuckets, error) {
	if err := filter.Validate(); err != nil {
		return domain.EngagementBuckets{}, err
	}
	_, history, err := s.fetchRows(ctx, filter)
	if err != nil {
		return domain.EngagementBuckets{}, err
	}
	return engagement.Classify(history, filter.End, s.thresholds), nil
}

// CohortEvolution tracks month-over-month customer transitions ending at the
// filter's end date.
func (s *AnalyticsService) CohortEvolution(ctx context.Context, filter domain.ReportFilter) ([]domain.CohortMonth, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	_, history, err := s.fetchRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	return cohort.Evolution(history, s.cohortLen, s.thresholds.AlmostInactiveMonths, filter.End), nil
}

// CLVReport computes per-customer lifetime value plus distribution and
// segment rollups over the tenant's full history.
func (s *AnalyticsService) CLVReport(ctx context.Context, filter domain.ReportFilter) (domain.CLVReport, error) {
	if err := filter.Validate(); err != nil {
		return domain.CLVReport{}, err
	}
	_, history, err := s.fetchRows(ctx, filter)
	if err != nil {
		return domain.CLVReport{}, err
	}
	return clv.Report(history, filter.End, s.thresholds), nil
}

// PivotTable builds the entity × period matrix for the filter window.
func (s *AnalyticsService) PivotTable(ctx context.Context, filter domain.ReportFilter, g domain.Granularity, metric domain.PivotMetric, byProduct bool) (domain.PivotTable, error) {
	builder, err := s.pivotBuilder(ctx, filter, g, metric, byProduct)
	if err != nil {
		return domain.PivotTable{}, err
	}
	return builder.Table(), nil
}

// PivotDrillDown builds the secondary-dimension matrix for one entity.
func (s *AnalyticsService) PivotDrillDown(ctx context.Context, filter domain.ReportFilter, g domain.Granularity, metric domain.PivotMetric, byProduct bool, entity string) (domain.PivotTable, error) {
	builder, err := s.pivotBuilder(ctx, filter, g, metric, byProduct)
	if err != nil {
		return domain.PivotTable{}, err
	}
	return builder.DrillDown(entity), nil
}

func (s *AnalyticsService) pivotBuilder(ctx context.Context, filter domain.ReportFilter, g domain.Granularity, metric domain.PivotMetric, byProduct bool) (*pivot.Builder, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	current, _, err := s.fetchRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := filter.Start
	ranges := period.GenerateRanges(filter.End, g, period.RangeOptions{StartDate: &start})

	entity, sub := pivot.EntityDimension(pivot.ByCustomer), pivot.EntityDimension(pivot.ByProduct)
	if byProduct {
		entity, sub = sub, entity
	}
	return pivot.NewBuilder(current, ranges, metric, entity, sub), nil
}

// fetchRows loads the windowed rows and the full dimension-filtered history
// in the repository's date order.
func (s *AnalyticsService) fetchRows(ctx context.Context, filter domain.ReportFilter) (current, history []domain.SaleRecord, err error) {
	current, err = s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch report rows: %w", err)
	}
	history, err = s.repo.ListAllSales(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch history rows: %w", err)
	}
	return current, history, nil
}

func rowsWithin(rows []domain.SaleRecord, start, end time.Time) []domain.SaleRecord {
	out := make([]domain.SaleRecord, 0)
	for _, r := range rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
