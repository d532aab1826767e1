// Package clv derives per-customer lifetime value metrics, churn-risk
// scores, a fixed-band distribution and customer-type segment rollups.
package clv

import (
	"sort"
	"time"

	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/domain"
)

// lifespanCapMonths caps the predictive horizon at one year.
const lifespanCapMonths = 12

// Compute folds every customer's rows into lifetime metrics. The reference
// date anchors the risk score and defaults to the maximum transaction date
// present, like the engagement classifier. Output is sorted descending by
// historical value.
func Compute(rows []domain.SaleRecord, referenceDate time.Time, th domain.EngagementThresholds) []domain.CLVRecord {
	if len(rows) == 0 {
		return []domain.CLVRecord{}
	}
	if referenceDate.IsZero() {
		for _, r := range rows {
			if r.Date.After(referenceDate) {
				referenceDate = r.Date
			}
		}
	}

	index := make(map[string]int)
	records := make([]domain.CLVRecord, 0)
	for _, r := range rows {
		if r.Customer == "" {
			continue
		}
		i, ok := index[r.Customer]
		if !ok {
			index[r.Customer] = len(records)
			records = append(records, domain.CLVRecord{
				Customer:      r.Customer,
				CustomerType:  r.CustomerType,
				FirstPurchase: r.Date,
				LastPurchase:  r.Date,
			})
			i = len(records) - 1
		}
		rec := &records[i]
		rec.TotalValue += r.Revenue
		rec.TotalOrders++
		if r.Date.Before(rec.FirstPurchase) {
			rec.FirstPurchase = r.Date
		}
		if r.Date.After(rec.LastPurchase) {
			rec.LastPurchase = r.Date
		}
		if rec.CustomerType == "" {
			rec.CustomerType = r.CustomerType
		}
	}

	for i := range records {
		derive(&records[i], referenceDate, th)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Historical != records[j].Historical {
			return records[i].Historical > records[j].Historical
		}
		return records[i].Customer < records[j].Customer
	})
	return records
}

func derive(rec *domain.CLVRecord, referenceDate time.Time, th domain.EngagementThresholds) {
	lifespan := period.Months30Between(rec.FirstPurchase, rec.LastPurchase)
	if lifespan < 1 {
		lifespan = 1
	}
	rec.LifespanMonths = lifespan

	if rec.TotalOrders > 0 {
		rec.AverageTicket = rec.TotalValue / float64(rec.TotalOrders)
	}
	rec.PurchaseFrequency = float64(rec.TotalOrders) / lifespan
	rec.Historical = rec.TotalValue

	horizon := lifespan * 1.5
	if horizon > lifespanCapMonths {
		horizon = lifespanCapMonths
	}
	rec.Predictive = rec.AverageTicket * rec.PurchaseFrequency * horizon

	rec.RiskScore = riskScore(period.Months30Between(rec.LastPurchase, referenceDate), th)
}

// riskScore maps months since last purchase onto 0-100, piecewise-linear:
// 0..40 up to the almost-inactive threshold, 40..80 up to the inactive
// threshold, then 80 plus 10 points per additional threshold-multiple,
// capped at 100.
func riskScore(monthsSince float64, th domain.EngagementThresholds) float64 {
	almost := float64(th.AlmostInactiveMonths)
	inactive := float64(th.InactiveMonths)
	if almost <= 0 || inactive <= almost {
		return 0
	}

	switch {
	case monthsSince < almost:
		return 40 * monthsSince / almost
	case monthsSince < inactive:
		return 40 + 40*(monthsSince-almost)/(inactive-almost)
	default:
		extra := 10 * (float64(int(monthsSince/inactive)) - 1)
		score := 80 + extra
		if score > 100 {
			return 100
		}
		return score
	}
}

// Distribution buckets records into fixed revenue bands by historical value.
func Distribution(records []domain.CLVRecord) []domain.CLVBucket {
	buckets := []domain.CLVBucket{
		{Label: "0-500", Min: 0, Max: 500},
		{Label: "500-1000", Min: 500, Max: 1000},
		{Label: "1000-2000", Min: 1000, Max: 2000},
		{Label: "2000-5000", Min: 2000, Max: 5000},
		{Label: "5000-10000", Min: 5000, Max: 10000},
		{Label: "10000+", Min: 10000, Max: -1},
	}
	for _, rec := range records {
		for i := range buckets {
			b := &buckets[i]
			if rec.Historical >= b.Min && (b.Max < 0 || rec.Historical < b.Max) {
				b.Count++
				b.TotalValue += rec.Historical
				break
			}
		}
	}
	return buckets
}

// Segments rolls records up by customer type, sorted descending by total
// value. Records without a type fall under the uncategorized label.
func Segments(records []domain.CLVRecord) []domain.CLVSegment {
	index := make(map[string]int)
	segments := make([]domain.CLVSegment, 0)
	sums := make(map[string]struct{ clv, freq, lifespan float64 })

	for _, rec := range records {
		name := rec.CustomerType
		if name == "" {
			name = domain.UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			index[name] = len(segments)
			segments = append(segments, domain.CLVSegment{CustomerType: name})
			i = len(segments) - 1
		}
		segments[i].Customers++
		segments[i].TotalValue += rec.Historical
		s := sums[name]
		s.clv += rec.Predictive
		s.freq += rec.PurchaseFrequency
		s.lifespan += rec.LifespanMonths
		sums[name] = s
	}

	for i := range segments {
		n := float64(segments[i].Customers)
		s := sums[segments[i].CustomerType]
		segments[i].AvgCLV = s.clv / n
		segments[i].AvgFrequency = s.freq / n
		segments[i].AvgLifespan = s.lifespan / n
	}

	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].TotalValue != segments[j].TotalValue {
			return segments[i].TotalValue > segments[j].TotalValue
		}
		return segments[i].CustomerType < segments[j].CustomerType
	})
	return segments
}

// Report bundles the three CLV views for one row set.
func Report(rows []domain.SaleRecord, referenceDate time.Time, th domain.EngagementThresholds) domain.CLVReport {
	records := Compute(rows, referenceDate, th)
	return domain.CLVReport{
		Customers:    records,
		Distribution: Distribution(records),
		Segments:     Segments(records),
	}
}
