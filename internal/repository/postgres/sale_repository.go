package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vendalytics/backend-go/internal/domain"
)

type saleRepository struct {
	db *DB
}

func NewSaleRepository(db *DB) *saleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `sale_date AS date, customer, product, customer_type, quantity, packages, boxes, revenue, cost, has_cost`

func (r *saleRepository) ListSales(ctx context.Context, filter domain.ReportFilter) ([]domain.SaleRecord, error) {
	query, args := buildSaleQuery(filter, true)

	var rows []domain.SaleRecord
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return rows, nil
}

func (r *saleRepository) ListAllSales(ctx context.Context, filter domain.ReportFilter) ([]domain.SaleRecord, error) {
	query, args := buildSaleQuery(filter, false)

	var rows []domain.SaleRecord
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sale history: %w", err)
	}
	return rows, nil
}

func buildSaleQuery(filter domain.ReportFilter, windowed bool) (string, []interface{}) {
	var (
		conditions = []string{"tenant = $1"}
		args       = []interface{}{filter.Tenant}
	)

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, cond+"$"+strconv.Itoa(len(args)))
	}

	if windowed {
		if !filter.Start.IsZero() {
			add("sale_date >= ", filter.Start)
		}
		if !filter.End.IsZero() {
			add("sale_date <= ", filter.End)
		}
	}
	if filter.Customer != "" {
		add("customer = ", filter.Customer)
	}
	if filter.Product != "" {
		add("product = ", filter.Product)
	}
	if filter.CustomerType != "" {
		add("customer_type = ", filter.CustomerType)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM sales WHERE %s ORDER BY sale_date ASC",
		saleColumns, strings.Join(conditions, " AND "),
	)
	return query, args
}

func (r *saleRepository) ReplaceSales(ctx context.Context, tenant string, rows []domain.SaleRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE tenant = $1`, tenant); err != nil {
			return fmt.Errorf("failed to clear tenant sales: %w", err)
		}

		query := `
			INSERT INTO sales (
				tenant, sale_date, customer, product, customer_type,
				quantity, packages, boxes, revenue, cost, has_cost
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(
				ctx,
				tenant,
				row.Date,
				row.Customer,
				row.Product,
				row.CustomerType,
				row.Quantity,
				row.Packages,
				row.Boxes,
				row.Revenue,
				row.Cost,
				row.HasCost,
			)
			if err != nil {
				return fmt.Errorf("failed to insert sale row: %w", err)
			}
		}

		bump := `
			INSERT INTO dataset_versions (tenant, version, updated_at)
			VALUES ($1, 1, NOW())
			ON CONFLICT (tenant) DO UPDATE
			SET version = dataset_versions.version + 1, updated_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, bump, tenant); err != nil {
			return fmt.Errorf("failed to bump dataset version: %w", err)
		}

		return nil
	})
}

func (r *saleRepository) DatasetVersion(ctx context.Context, tenant string) (string, error) {
	var (
		version   int64
		updatedAt time.Time
	)
	query := `SELECT version, updated_at FROM dataset_versions WHERE tenant = $1`
	err := r.db.QueryRowxContext(ctx, query, tenant).Scan(&version, &updatedAt)
	if err == sql.ErrNoRows {
		return "v0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get dataset version: %w", err)
	}
	return fmt.Sprintf("v%d-%d", version, updatedAt.Unix()), nil
}
