package clv

import (
	"math"
	"testing"
	"time"

	"github.com/vendalytics/backend-go/internal/domain"
)

var thresholds = domain.EngagementThresholds{
	AlmostInactiveMonths: 3,
	InactiveMonths:       6,
	MaxLookbackMonths:    12,
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sale(customer, ctype string, d time.Time, revenue float64) domain.SaleRecord {
	return domain.SaleRecord{Customer: customer, CustomerType: ctype, Date: d, Revenue: revenue}
}

func TestComputeLifetimeFold(t *testing.T) {
	ref := date(2024, 6, 30)
	rows := []domain.SaleRecord{
		sale("c1", "varejo", date(2024, 1, 1), 300),
		sale("c1", "varejo", date(2024, 3, 1), 100),
		sale("c1", "varejo", date(2024, 5, 1), 200),
	}
	records := Compute(rows, ref, thresholds)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.TotalValue != 600 || rec.TotalOrders != 3 {
		t.Fatalf("fold: %+v", rec)
	}
	if rec.AverageTicket != 200 {
		t.Fatalf("average ticket: got %v, want 200", rec.AverageTicket)
	}
	// Jan 1 .. May 1 is 121 days = 4.0333.. 30-day months.
	wantLifespan := 121.0 / 30
	if math.Abs(rec.LifespanMonths-wantLifespan) > 1e-9 {
		t.Fatalf("lifespan: got %v, want %v", rec.LifespanMonths, wantLifespan)
	}
	if math.Abs(rec.PurchaseFrequency-3/wantLifespan) > 1e-9 {
		t.Fatalf("frequency: got %v", rec.PurchaseFrequency)
	}
	if rec.Historical != 600 {
		t.Fatalf("historical: got %v", rec.Historical)
	}
	// predictive = ticket * frequency * min(12, lifespan*1.5)
	wantPredictive := 200 * (3 / wantLifespan) * (wantLifespan * 1.5)
	if math.Abs(rec.Predictive-wantPredictive) > 1e-9 {
		t.Fatalf("predictive: got %v, want %v", rec.Predictive, wantPredictive)
	}
}

func TestComputeSinglePurchaseLifespanFloor(t *testing.T) {
	ref := date(2024, 6, 30)
	records := Compute([]domain.SaleRecord{sale("c1", "", date(2024, 6, 1), 50)}, ref, thresholds)
	if records[0].LifespanMonths != 1 {
		t.Fatalf("lifespan floor: got %v, want 1", records[0].LifespanMonths)
	}
}

func TestRiskScoreMonotonicWithReferenceDate(t *testing.T) {
	last := date(2024, 1, 1)
	rows := []domain.SaleRecord{sale("c1", "", last, 100)}

	prev := -1.0
	for days := 0; days <= 900; days += 15 {
		ref := last.AddDate(0, 0, days)
		score := Compute(rows, ref, thresholds)[0].RiskScore
		if score < prev {
			t.Fatalf("risk score decreased at +%dd: %v -> %v", days, prev, score)
		}
		if score < 0 || score > 100 {
			t.Fatalf("risk score out of range at +%dd: %v", days, score)
		}
		prev = score
	}
}

func TestRiskScorePiecewise(t *testing.T) {
	cases := []struct {
		months float64
		want   float64
	}{
		{0, 0},
		{1.5, 20},  // halfway to almost-inactive: 40 * 1.5/3
		{3, 40},    // at the almost-inactive threshold
		{4.5, 60},  // halfway between thresholds
		{6, 80},    // at the inactive threshold
		{12, 90},   // one extra threshold-multiple
		{18, 100},  // two extra multiples
		{600, 100}, // capped
	}
	for _, tc := range cases {
		if got := riskScore(tc.months, thresholds); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("riskScore(%v): got %v, want %v", tc.months, got, tc.want)
		}
	}
}

func TestDistributionBands(t *testing.T) {
	records := []domain.CLVRecord{
		{Customer: "a", Historical: 0},
		{Customer: "b", Historical: 499.99},
		{Customer: "c", Historical: 500},
		{Customer: "d", Historical: 1500},
		{Customer: "e", Historical: 4000},
		{Customer: "f", Historical: 7500},
		{Customer: "g", Historical: 25000},
	}
	buckets := Distribution(records)
	wantCounts := []int{2, 1, 1, 1, 1, 1}
	for i, want := range wantCounts {
		if buckets[i].Count != want {
			t.Fatalf("band %s: got %d, want %d", buckets[i].Label, buckets[i].Count, want)
		}
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total != len(records) {
		t.Fatalf("records leaked from bands: got %d, want %d", total, len(records))
	}
}

func TestSegmentsRollup(t *testing.T) {
	ref := date(2024, 6, 30)
	rows := []domain.SaleRecord{
		sale("c1", "atacado", date(2024, 5, 1), 1000),
		sale("c2", "atacado", date(2024, 5, 2), 3000),
		sale("c3", "", date(2024, 5, 3), 50),
	}
	segments := Segments(Compute(rows, ref, thresholds))
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].CustomerType != "atacado" || segments[0].Customers != 2 || segments[0].TotalValue != 4000 {
		t.Fatalf("atacado segment: %+v", segments[0])
	}
	if segments[1].CustomerType != domain.UncategorizedLabel || segments[1].Customers != 1 {
		t.Fatalf("uncategorized segment: %+v", segments[1])
	}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, time.Time{}, thresholds); len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
}
