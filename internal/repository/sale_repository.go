package repository

import (
	"context"

	"github.com/vendalytics/backend-go/internal/domain"
)

// SaleRepository is the tenant-scoped sale-row store backing the analytics
// engine. Every query is bounded to one tenant; rows never cross tenants.
type SaleRepository interface {
	// ListSales returns rows matching the filter's date window and
	// dimension criteria, ordered by date ascending.
	ListSales(ctx context.Context, filter domain.ReportFilter) ([]domain.SaleRecord, error)

	// ListAllSales returns the tenant's full history with only the
	// dimension criteria applied. Engagement, cohort and CLV need rows
	// outside the report window.
	ListAllSales(ctx context.Context, filter domain.ReportFilter) ([]domain.SaleRecord, error)

	// ReplaceSales swaps a tenant's dataset for a freshly ingested one and
	// bumps the tenant's dataset version.
	ReplaceSales(ctx context.Context, tenant string, rows []domain.SaleRecord) error

	// DatasetVersion returns an opaque token that changes whenever the
	// tenant's rows change. Used as a cache key component.
	DatasetVersion(ctx context.Context, tenant string) (string, error)
}
