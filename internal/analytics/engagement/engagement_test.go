package engagement

import (
	"testing"
	"time"

	"github.com/vendalytics/backend-go/internal/domain"
)

var thresholds = domain.EngagementThresholds{
	AlmostInactiveMonths: 3,
	InactiveMonths:       6,
	MaxLookbackMonths:    12,
}

func sale(customer string, daysBeforeRef int, ref time.Time) domain.SaleRecord {
	return domain.SaleRecord{
		Customer: customer,
		Date:     ref.AddDate(0, 0, -daysBeforeRef),
		Revenue:  100,
	}
}

func TestClassifyBuckets(t *testing.T) {
	ref := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	rows := []domain.SaleRecord{
		// entire history inside the almost-inactive window -> new
		sale("novato", 10, ref),
		sale("novato", 40, ref),
		// recent last purchase, old first purchase -> active
		sale("fiel", 5, ref),
		sale("fiel", 200, ref),
		// last purchase between 90 and 180 days -> almost inactive
		sale("sumindo", 120, ref),
		// last purchase between 180 and 360 days -> inactive
		sale("perdido", 250, ref),
		// beyond the 360-day lookback -> excluded
		sale("antigo", 400, ref),
	}

	got := Classify(rows, ref, thresholds)

	checks := []struct {
		name   string
		bucket []string
		want   []string
	}{
		{"new", got.New, []string{"novato"}},
		{"active", got.Active, []string{"fiel"}},
		{"almost_inactive", got.AlmostInactive, []string{"sumindo"}},
		{"inactive", got.Inactive, []string{"perdido"}},
	}
	for _, c := range checks {
		if len(c.bucket) != len(c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, c.bucket, c.want)
		}
		for i := range c.want {
			if c.bucket[i] != c.want[i] {
				t.Fatalf("%s: got %v, want %v", c.name, c.bucket, c.want)
			}
		}
	}
}

// Buckets must be pairwise disjoint for any threshold configuration.
func TestClassifyDisjoint(t *testing.T) {
	ref := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	var rows []domain.SaleRecord
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, name := range names {
		rows = append(rows, sale(name, i*70, ref), sale(name, i*70+15, ref))
	}

	for _, th := range []domain.EngagementThresholds{
		thresholds,
		{AlmostInactiveMonths: 1, InactiveMonths: 2, MaxLookbackMonths: 24},
		{AlmostInactiveMonths: 6, InactiveMonths: 12, MaxLookbackMonths: 18},
	} {
		got := Classify(rows, ref, th)
		seen := make(map[string]string)
		for bucket, members := range map[string][]string{
			"new": got.New, "active": got.Active,
			"almost_inactive": got.AlmostInactive, "inactive": got.Inactive,
		} {
			for _, m := range members {
				if prev, dup := seen[m]; dup {
					t.Fatalf("thresholds %+v: %q in both %s and %s", th, m, prev, bucket)
				}
				seen[m] = bucket
			}
		}
	}
}

func TestClassifyDefaultsReferenceToMaxDate(t *testing.T) {
	// Historical dataset: latest transaction long before wall-clock now.
	last := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := []domain.SaleRecord{
		{Customer: "x", Date: last.AddDate(0, 0, -10), Revenue: 50},
		{Customer: "x", Date: last, Revenue: 50},
	}
	got := Classify(rows, time.Time{}, thresholds)
	if !got.ReferenceDate.Equal(last) {
		t.Fatalf("reference date: got %v, want %v", got.ReferenceDate, last)
	}
	if len(got.New) != 1 || got.New[0] != "x" {
		t.Fatalf("expected x classified as new, got %+v", got)
	}
}

func TestClassifyEmpty(t *testing.T) {
	got := Classify(nil, time.Time{}, thresholds)
	if len(got.New)+len(got.Active)+len(got.AlmostInactive)+len(got.Inactive) != 0 {
		t.Fatalf("expected empty buckets, got %+v", got)
	}
}

func TestClassifyCustomerRecordsFoldsSlices(t *testing.T) {
	ref := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	records := []domain.CustomerPeriodRecord{
		{Customer: "c1", FirstPurchase: ref.AddDate(0, 0, -300), LastPurchase: ref.AddDate(0, 0, -300), Value: 10, Orders: 1},
		{Customer: "c1", FirstPurchase: ref.AddDate(0, 0, -20), LastPurchase: ref.AddDate(0, 0, -20), Value: 30, Orders: 2},
	}
	got := ClassifyCustomerRecords(records, ref, thresholds)
	// Recent last purchase but old first purchase: active, not new.
	if len(got.Active) != 1 || got.Active[0] != "c1" {
		t.Fatalf("expected c1 active after folding, got %+v", got)
	}
}
