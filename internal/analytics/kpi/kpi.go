// Package kpi computes the dashboard KPI cards: current-vs-previous-period
// deltas, year-to-date totals and naive projections.
package kpi

import (
	"math"
	"time"

	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/domain"
)

type totals struct {
	revenue   float64
	cost      float64
	orders    int
	customers map[string]struct{}
	units     float64
	packages  float64
	boxes     float64
}

func (t totals) averageTicket() float64 {
	if t.orders == 0 {
		return 0
	}
	return t.revenue / float64(t.orders)
}

func (t totals) grossMarginPct() float64 {
	if t.revenue <= 0 {
		return 0
	}
	pct := 100 * (t.revenue - t.cost) / t.revenue
	return clamp(pct, -100, 100)
}

// Compute builds the KPI summary for the current period. currentRows must
// already be restricted to [start, end]; allRows is the full history used
// for previous-period, year-to-date and projection lookups.
func Compute(currentRows, allRows []domain.SaleRecord, start, end time.Time) domain.KPISummary {
	prev := period.InferPreviousComparable(start, end)
	prevRows := rowsWithin(allRows, prev.Start, prev.End)

	cur := aggregate(currentRows)
	prv := aggregate(prevRows)

	summary := domain.KPISummary{
		Revenue:         metric(cur.revenue, prv.revenue),
		Orders:          metric(float64(cur.orders), float64(prv.orders)),
		AverageTicket:   metric(cur.averageTicket(), prv.averageTicket()),
		UniqueCustomers: metric(float64(len(cur.customers)), float64(len(prv.customers))),
		Units:           metric(cur.units, prv.units),
		Packages:        metric(cur.packages, prv.packages),
		Boxes:           metric(cur.boxes, prv.boxes),
		ComparisonLabel: prev.Label,
	}

	// Margin delta is reported in percentage points, not percentage change.
	summary.GrossMarginPct = domain.Metric{
		Value:     round1(cur.grossMarginPct()),
		Variation: round1(cur.grossMarginPct() - prv.grossMarginPct()),
	}

	lastTx := lastTransactionDate(allRows, end)
	ytd, prevYTD := yearToDate(allRows, end)
	summary.AnnualRevenue = metric(ytd, prevYTD)
	summary.AnnualProjection = annualProjection(ytd, lastTx)
	summary.MonthlyProjection = monthlyProjection(cur, prv, allRows, start, lastTx)

	return summary
}

// metric pairs a value with its percentage change against the previous
// period, zero whenever the previous value is zero or negative.
func metric(current, previous float64) domain.Metric {
	return domain.Metric{Value: current, Variation: variation(current, previous)}
}

func variation(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return round1((current - previous) / previous * 100)
}

func aggregate(rows []domain.SaleRecord) totals {
	t := totals{customers: make(map[string]struct{})}
	for _, r := range rows {
		t.revenue += r.Revenue
		if r.HasCost {
			t.cost += r.Cost
		}
		t.orders++
		t.customers[r.Customer] = struct{}{}
		t.units += r.Quantity
		t.packages += r.Packages
		t.boxes += r.Boxes
	}
	return t
}

func rowsWithin(rows []domain.SaleRecord, start, end time.Time) []domain.SaleRecord {
	out := make([]domain.SaleRecord, 0, len(rows))
	for _, r := range rows {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out
}

func lastTransactionDate(rows []domain.SaleRecord, fallback time.Time) time.Time {
	last := time.Time{}
	for _, r := range rows {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	if last.IsZero() {
		return fallback
	}
	return last
}

// yearToDate sums revenue from Jan 1 of the period's year through the period
// end, and the same Jan-1-to-(month/day) window of the prior year.
func yearToDate(rows []domain.SaleRecord, end time.Time) (current, previous float64) {
	endDay := period.StartOfDay(end)
	jan1 := time.Date(endDay.Year(), 1, 1, 0, 0, 0, 0, endDay.Location())

	prevYear := endDay.Year() - 1
	prevJan1 := time.Date(prevYear, 1, 1, 0, 0, 0, 0, endDay.Location())
	day := endDay.Day()
	if endDay.Month() == time.February && day == 29 {
		day = 28
	}
	prevEnd := time.Date(prevYear, endDay.Month(), day, 0, 0, 0, 0, endDay.Location())

	for _, r := range rows {
		d := period.StartOfDay(r.Date)
		switch {
		case !d.Before(jan1) && !d.After(endDay):
			current += r.Revenue
		case !d.Before(prevJan1) && !d.After(prevEnd):
			previous += r.Revenue
		}
	}
	return current, previous
}

func annualProjection(ytdRevenue float64, lastTx time.Time) float64 {
	jan1 := time.Date(lastTx.Year(), 1, 1, 0, 0, 0, 0, lastTx.Location())
	elapsed := period.InclusiveDayCount(jan1, lastTx)
	if elapsed == 0 {
		return 0
	}
	return ytdRevenue * 365 / float64(elapsed)
}

// monthlyProjection extrapolates the running month only when the current
// period starts on the 1st of the reference month (the month of the last
// transaction). The partial value is scaled by the prior month's growth
// ratio (full previous month over the previous comparable window), with a
// flat x2 fallback when the ratio is undefined.
func monthlyProjection(cur, prv totals, allRows []domain.SaleRecord, start, lastTx time.Time) *domain.MonthlyProjection {
	s := period.StartOfDay(start)
	if s.Day() != 1 || s.Year() != lastTx.Year() || s.Month() != lastTx.Month() {
		return nil
	}

	prevMonthStart := s.AddDate(0, -1, 0)
	prevMonthEnd := period.EndOfDay(period.LastDayOfMonth(prevMonthStart))
	prevMonth := aggregate(rowsWithin(allRows, prevMonthStart, prevMonthEnd))

	project := func(current, prevComparable, prevMonthTotal float64) float64 {
		if prevComparable == 0 {
			return current * 2
		}
		return current * (prevMonthTotal / prevComparable)
	}

	return &domain.MonthlyProjection{
		Revenue: project(cur.revenue, prv.revenue, prevMonth.revenue),
		Orders:  project(float64(cur.orders), float64(prv.orders), float64(prevMonth.orders)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
