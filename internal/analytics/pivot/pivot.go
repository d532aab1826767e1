// Package pivot builds entity × period matrices with a grand-total row and
// lazy, memoized drill-down into a secondary entity dimension.
package pivot

import (
	"sort"

	"github.com/vendalytics/backend-go/internal/domain"
)

// TotalLabel names the grand-total row.
const TotalLabel = "Total"

// EntityDimension extracts the grouping key for a pivot row.
type EntityDimension func(domain.SaleRecord) string

// ByCustomer and ByProduct are the two dimensions the product exposes:
// client × period with product drill-down, and the reverse.
func ByCustomer(r domain.SaleRecord) string { return r.Customer }
func ByProduct(r domain.SaleRecord) string  { return r.Product }

// Builder holds one filtered row set, a period series and a metric, and
// serves the main table plus per-entity drill-downs. The drill-down memo
// lives for as long as the inputs do; Reset drops it.
type Builder struct {
	rows    []domain.SaleRecord
	periods []domain.PeriodRange
	metric  domain.PivotMetric
	entity  EntityDimension
	sub     EntityDimension

	memo map[string]domain.PivotTable
}

// NewBuilder wires a builder for one (rows, periods, metric) combination.
// entity selects the main rows, sub the drill-down dimension.
func NewBuilder(rows []domain.SaleRecord, periods []domain.PeriodRange, metric domain.PivotMetric, entity, sub EntityDimension) *Builder {
	return &Builder{
		rows:    rows,
		periods: periods,
		metric:  metric,
		entity:  entity,
		sub:     sub,
		memo:    make(map[string]domain.PivotTable),
	}
}

// Reset swaps the underlying row set and metric, invalidating every memoized
// drill-down.
func (b *Builder) Reset(rows []domain.SaleRecord, metric domain.PivotMetric) {
	b.rows = rows
	b.metric = metric
	b.memo = make(map[string]domain.PivotTable)
}

// Table builds the main entity × period matrix.
func (b *Builder) Table() domain.PivotTable {
	return build(b.rows, b.periods, b.metric, b.entity)
}

// DrillDown rebuilds the matrix restricted to one entity's rows, grouped by
// the secondary dimension. Results are cached per entity until Reset.
func (b *Builder) DrillDown(entity string) domain.PivotTable {
	if cached, ok := b.memo[entity]; ok {
		return cached
	}

	filtered := make([]domain.SaleRecord, 0)
	for _, r := range b.rows {
		if b.entity(r) == entity {
			filtered = append(filtered, r)
		}
	}
	table := build(filtered, b.periods, b.metric, b.sub)
	b.memo[entity] = table
	return table
}

func build(rows []domain.SaleRecord, periods []domain.PeriodRange, metric domain.PivotMetric, dim EntityDimension) domain.PivotTable {
	table := domain.PivotTable{
		Metric:  metric,
		Periods: periods,
		Rows:    []domain.PivotRow{},
		Total:   domain.PivotRow{Entity: TotalLabel, Values: make([]float64, len(periods))},
	}

	index := make(map[string]int)
	for _, r := range rows {
		p := periodIndex(periods, r)
		if p < 0 {
			continue
		}
		name := dim(r)
		i, ok := index[name]
		if !ok {
			index[name] = len(table.Rows)
			table.Rows = append(table.Rows, domain.PivotRow{
				Entity: name,
				Values: make([]float64, len(periods)),
			})
			i = len(table.Rows) - 1
		}
		v := metricValue(r, metric)
		table.Rows[i].Values[p] += v
		table.Rows[i].Total += v
		table.Total.Values[p] += v
		table.Total.Total += v
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		if table.Rows[i].Total != table.Rows[j].Total {
			return table.Rows[i].Total > table.Rows[j].Total
		}
		return table.Rows[i].Entity < table.Rows[j].Entity
	})
	return table
}

func periodIndex(periods []domain.PeriodRange, r domain.SaleRecord) int {
	// The series is sorted and non-overlapping; binary-search the first
	// range whose end is not before the row's date.
	i := sort.Search(len(periods), func(i int) bool {
		return !periods[i].End.Before(r.Date)
	})
	if i < len(periods) && periods[i].Contains(r.Date) {
		return i
	}
	return -1
}

func metricValue(r domain.SaleRecord, metric domain.PivotMetric) float64 {
	switch metric {
	case domain.PivotQuantity:
		return r.Quantity
	case domain.PivotBoxes:
		return r.Boxes
	default:
		return r.Revenue
	}
}
