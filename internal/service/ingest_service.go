package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/vendalytics/backend-go/internal/cache"
	"github.com/vendalytics/backend-go/internal/ingest"
	"github.com/vendalytics/backend-go/internal/repository"
)

// IngestService loads a tenant's sale rows from a CSV stream, replaces the
// stored dataset and drops every cached summary for that tenant.
type IngestService struct {
	normalizer *ingest.Normalizer
	repo       repository.SaleRepository
	cache      cache.SummaryCache
}

func NewIngestService(normalizer *ingest.Normalizer, repo repository.SaleRepository, summaryCache cache.SummaryCache) *IngestService {
	return &IngestService{
		normalizer: normalizer,
		repo:       repo,
		cache:      summaryCache,
	}
}

// IngestCSV replaces the tenant's dataset with the rows parsed from r.
// Malformed rows are dropped during normalization, not treated as errors;
// an empty accepted set is rejected so a broken file cannot wipe a tenant.
func (s *IngestService) IngestCSV(ctx context.Context, tenant string, r io.Reader) (ingest.Result, error) {
	if tenant == "" {
		return ingest.Result{}, fmt.Errorf("tenant is required")
	}

	result, err := s.normalizer.ReadCSV(r)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("failed to normalize rows: %w", err)
	}
	if len(result.Rows) == 0 {
		return result, fmt.Errorf("no valid rows in upload (%d skipped)", result.Skipped())
	}

	if err := s.repo.ReplaceSales(ctx, tenant, result.Rows); err != nil {
		return result, fmt.Errorf("failed to store rows: %w", err)
	}

	if err := s.cache.InvalidateTenant(ctx, tenant); err != nil {
		log.Warn().Err(err).Str("tenant", tenant).Msg("failed to invalidate summary cache after ingest")
	}

	log.Info().
		Str("tenant", tenant).
		Int("rows", len(result.Rows)).
		Int("skipped", result.Skipped()).
		Msg("dataset replaced")
	return result, nil
}
