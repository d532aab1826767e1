package kpi

import (
	"math"
	"testing"
	"time"

	"github.com/vendalytics/backend-go/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func row(customer string, d time.Time, revenue, cost float64) domain.SaleRecord {
	return domain.SaleRecord{
		Customer: customer,
		Product:  "p",
		Date:     d,
		Revenue:  revenue,
		Cost:     cost,
		HasCost:  true,
		Quantity: 1,
	}
}

func within(rows []domain.SaleRecord, start, end time.Time) []domain.SaleRecord {
	return rowsWithin(rows, start, end)
}

// The zero-previous rule applies to the aggregate, not per customer: B's
// prior-month revenue keeps the previous total positive, so A's jump is
// reflected in the variation instead of being zeroed out.
func TestComputeAggregateLevelVariation(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	all := []domain.SaleRecord{
		row("A", date(2024, 3, 10), 1000, 400),
		row("B", date(2024, 3, 12), 500, 500),
		row("B", date(2024, 2, 12), 500, 500),
	}
	got := Compute(within(all, start, end), all, start, end)

	if got.Revenue.Value != 1500 {
		t.Fatalf("revenue value: got %v, want 1500", got.Revenue.Value)
	}
	if got.Revenue.Variation != 200 {
		t.Fatalf("revenue variation: got %v, want 200", got.Revenue.Variation)
	}
	if got.ComparisonLabel != "mês anterior" {
		t.Fatalf("comparison label: got %q", got.ComparisonLabel)
	}
}

func TestComputeZeroPreviousYieldsZeroVariation(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	all := []domain.SaleRecord{
		row("A", date(2024, 3, 10), 1000, 400),
	}
	got := Compute(within(all, start, end), all, start, end)

	for name, m := range map[string]domain.Metric{
		"revenue":          got.Revenue,
		"orders":           got.Orders,
		"average_ticket":   got.AverageTicket,
		"unique_customers": got.UniqueCustomers,
		"units":            got.Units,
	} {
		if m.Variation != 0 {
			t.Fatalf("%s variation: got %v, want 0", name, m.Variation)
		}
		if math.IsNaN(m.Variation) || math.IsInf(m.Variation, 0) {
			t.Fatalf("%s variation not finite: %v", name, m.Variation)
		}
	}
}

func TestComputeEmptyRows(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	got := Compute(nil, nil, start, end)

	for name, v := range map[string]float64{
		"revenue":           got.Revenue.Value,
		"orders":            got.Orders.Value,
		"average_ticket":    got.AverageTicket.Value,
		"gross_margin":      got.GrossMarginPct.Value,
		"annual_revenue":    got.AnnualRevenue.Value,
		"annual_projection": got.AnnualProjection,
	} {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("%s: got %v, want 0", name, v)
		}
	}
}

func TestGrossMarginVariationInPoints(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	all := []domain.SaleRecord{
		// current month: margin 60%
		row("A", date(2024, 3, 10), 1000, 400),
		// previous month: margin 50%
		row("A", date(2024, 2, 10), 1000, 500),
	}
	got := Compute(within(all, start, end), all, start, end)
	if got.GrossMarginPct.Value != 60 {
		t.Fatalf("margin value: got %v, want 60", got.GrossMarginPct.Value)
	}
	if got.GrossMarginPct.Variation != 10 {
		t.Fatalf("margin variation: got %v points, want 10", got.GrossMarginPct.Variation)
	}
}

func TestAverageTicket(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	all := []domain.SaleRecord{
		row("A", date(2024, 3, 5), 300, 0),
		row("A", date(2024, 3, 6), 100, 0),
	}
	got := Compute(within(all, start, end), all, start, end)
	if got.AverageTicket.Value != 200 {
		t.Fatalf("average ticket: got %v, want 200", got.AverageTicket.Value)
	}
}

func TestYearToDateComparesPriorYearWindow(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	all := []domain.SaleRecord{
		row("A", date(2024, 1, 15), 100, 0),
		row("A", date(2024, 3, 20), 200, 0),
		// prior year, inside the Jan-1..Mar-31 window
		row("A", date(2023, 2, 10), 150, 0),
		// prior year, outside the window
		row("A", date(2023, 6, 10), 999, 0),
	}
	got := Compute(within(all, start, end), all, start, end)
	if got.AnnualRevenue.Value != 300 {
		t.Fatalf("ytd: got %v, want 300", got.AnnualRevenue.Value)
	}
	if got.AnnualRevenue.Variation != 100 {
		t.Fatalf("ytd variation: got %v, want 100", got.AnnualRevenue.Variation)
	}
}

func TestAnnualProjectionScalesByElapsedDays(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)
	// Last transaction on Feb 4 of 2024: 35 days elapsed since Jan 1.
	all := []domain.SaleRecord{
		row("A", date(2024, 1, 10), 100, 0),
		row("A", date(2024, 2, 4), 250, 0),
	}
	got := Compute(within(all, start, end), all, start, end)
	want := 350.0 * 365 / 35
	if math.Abs(got.AnnualProjection-want) > 1e-9 {
		t.Fatalf("annual projection: got %v, want %v", got.AnnualProjection, want)
	}
}

func TestMonthlyProjectionGrowthRatio(t *testing.T) {
	// Running month: March 1..15, last transaction Mar 15.
	start, end := date(2024, 3, 1), date(2024, 3, 15)
	all := []domain.SaleRecord{
		row("A", date(2024, 3, 10), 300, 0),
		// February 1..15 (previous comparable window): 200
		row("A", date(2024, 2, 10), 200, 0),
		// February 16..29 remainder: full month 500
		row("A", date(2024, 2, 20), 300, 0),
	}
	got := Compute(within(all, start, end), all, start, end)
	if got.MonthlyProjection == nil {
		t.Fatal("expected a monthly projection")
	}
	// 300 * (500 / 200)
	if math.Abs(got.MonthlyProjection.Revenue-750) > 1e-9 {
		t.Fatalf("projected revenue: got %v, want 750", got.MonthlyProjection.Revenue)
	}
}

func TestMonthlyProjectionFallbackDoubles(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 15)
	all := []domain.SaleRecord{
		row("A", date(2024, 3, 10), 300, 0),
	}
	got := Compute(within(all, start, end), all, start, end)
	if got.MonthlyProjection == nil {
		t.Fatal("expected a monthly projection")
	}
	if got.MonthlyProjection.Revenue != 600 {
		t.Fatalf("fallback projection: got %v, want 600", got.MonthlyProjection.Revenue)
	}
}

func TestMonthlyProjectionSkippedOffMonthStart(t *testing.T) {
	start, end := date(2024, 3, 5), date(2024, 3, 15)
	all := []domain.SaleRecord{row("A", date(2024, 3, 10), 300, 0)}
	got := Compute(within(all, start, end), all, start, end)
	if got.MonthlyProjection != nil {
		t.Fatalf("projection must require a month-start period, got %+v", got.MonthlyProjection)
	}
}
