// Package ranking builds top-N-plus-"Outros" breakdowns and the up/down
// movers comparison between two periods.
package ranking

import (
	"math"
	"sort"

	"github.com/vendalytics/backend-go/internal/domain"
)

// DefaultTopN keeps the five largest entries before folding the tail.
const DefaultTopN = 5

// Dimension selects the grouping key of a ranking.
type Dimension string

const (
	ByCustomer     Dimension = "customer"
	ByProduct      Dimension = "product"
	ByCustomerType Dimension = "customer_type"
)

func (d Dimension) key(r domain.SaleRecord) string {
	switch d {
	case ByProduct:
		return r.Product
	case ByCustomerType:
		if r.CustomerType == "" {
			return domain.UncategorizedLabel
		}
		return r.CustomerType
	default:
		return r.Customer
	}
}

type bucket struct {
	name    string
	revenue float64
	cost    float64
}

// Top sums revenue and cost per dimension value, keeps the n largest by
// revenue and folds the remainder into a synthetic Other entry. The sum of
// the emitted revenues always equals the sum over all rows.
func Top(rows []domain.SaleRecord, dim Dimension, n int) []domain.RankingEntry {
	if n <= 0 {
		n = DefaultTopN
	}

	index := make(map[string]int)
	var buckets []bucket
	for _, r := range rows {
		name := dim.key(r)
		i, ok := index[name]
		if !ok {
			index[name] = len(buckets)
			buckets = append(buckets, bucket{name: name})
			i = len(buckets) - 1
		}
		buckets[i].revenue += r.Revenue
		if r.HasCost {
			buckets[i].cost += r.Cost
		}
	}
	if len(buckets) == 0 {
		return []domain.RankingEntry{}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].revenue != buckets[j].revenue {
			return buckets[i].revenue > buckets[j].revenue
		}
		return buckets[i].name < buckets[j].name
	})

	entries := make([]domain.RankingEntry, 0, n+1)
	for i, b := range buckets {
		if i < n {
			entries = append(entries, domain.RankingEntry{
				Name:           b.name,
				Revenue:        b.revenue,
				Cost:           b.cost,
				GrossMarginPct: grossMarginPct(b.revenue, b.cost),
			})
			continue
		}
		if len(entries) == n {
			entries = append(entries, domain.RankingEntry{Other: true})
		}
		other := &entries[len(entries)-1]
		other.Revenue += b.revenue
		other.Cost += b.cost
	}
	if len(entries) > n {
		other := &entries[len(entries)-1]
		other.GrossMarginPct = grossMarginPct(other.Revenue, other.Cost)
	}
	return entries
}

// grossMarginPct returns round(clamp(100*(1 - cost/revenue), -100, 100))
// with the degenerate cases pinned: revenue without cost is full margin,
// cost without revenue is full loss, neither is zero.
func grossMarginPct(revenue, cost float64) int {
	switch {
	case revenue == 0 && cost == 0:
		return 0
	case revenue == 0:
		return -100
	case cost == 0:
		return 100
	}
	pct := 100 * (1 - cost/revenue)
	if pct < -100 {
		pct = -100
	}
	if pct > 100 {
		pct = 100
	}
	return int(math.Round(pct))
}

// Movers ranks customers by absolute revenue change between two row sets,
// so large absolute movers dominate small-base percentage swings. Up keeps
// the n largest gains, down the n largest drops; flat customers are skipped.
func Movers(currentRows, previousRows []domain.SaleRecord, n int) (up, down []domain.RankingMover) {
	if n <= 0 {
		n = DefaultTopN
	}

	current := revenueByCustomer(currentRows)
	previous := revenueByCustomer(previousRows)

	names := make(map[string]struct{}, len(current)+len(previous))
	for name := range current {
		names[name] = struct{}{}
	}
	for name := range previous {
		names[name] = struct{}{}
	}

	movers := make([]domain.RankingMover, 0, len(names))
	for name := range names {
		m := domain.RankingMover{
			Customer: name,
			Current:  current[name],
			Previous: previous[name],
		}
		m.Change = m.Current - m.Previous
		if m.Change == 0 {
			continue
		}
		movers = append(movers, m)
	}

	sort.SliceStable(movers, func(i, j int) bool {
		if movers[i].Change != movers[j].Change {
			return movers[i].Change > movers[j].Change
		}
		return movers[i].Customer < movers[j].Customer
	})

	up = make([]domain.RankingMover, 0, n)
	for _, m := range movers {
		if m.Change <= 0 || len(up) == n {
			break
		}
		up = append(up, m)
	}

	down = make([]domain.RankingMover, 0, n)
	for i := len(movers) - 1; i >= 0; i-- {
		if movers[i].Change >= 0 || len(down) == n {
			break
		}
		down = append(down, movers[i])
	}
	return up, down
}

func revenueByCustomer(rows []domain.SaleRecord) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range rows {
		totals[r.Customer] += r.Revenue
	}
	return totals
}
