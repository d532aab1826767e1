// Package engagement buckets customers into new / active / almost-inactive /
// inactive against a reference date, using configurable month thresholds.
package engagement

import (
	"sort"
	"time"

	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/domain"
)

type history struct {
	first time.Time
	last  time.Time
}

// Classify buckets every customer in rows. Classification must see the
// customer's entire purchase history, so rows should be the full set, not a
// filtered window. A zero reference date defaults to the maximum transaction
// date present, so historical datasets classify sensibly. Customers whose
// last purchase predates the max-lookback boundary are excluded entirely.
func Classify(rows []domain.SaleRecord, referenceDate time.Time, th domain.EngagementThresholds) domain.EngagementBuckets {
	buckets := domain.EngagementBuckets{
		New:            []string{},
		Active:         []string{},
		AlmostInactive: []string{},
		Inactive:       []string{},
	}
	if len(rows) == 0 {
		return buckets
	}

	if referenceDate.IsZero() {
		for _, r := range rows {
			if r.Date.After(referenceDate) {
				referenceDate = r.Date
			}
		}
	}
	buckets.ReferenceDate = referenceDate

	histories := foldHistories(rows)

	almostBoundary := period.SubtractMonths30(referenceDate, th.AlmostInactiveMonths)
	inactiveBoundary := period.SubtractMonths30(referenceDate, th.InactiveMonths)
	lookbackBoundary := period.SubtractMonths30(referenceDate, th.MaxLookbackMonths)

	for customer, h := range histories {
		switch {
		case !h.last.Before(almostBoundary) && !h.first.Before(almostBoundary):
			buckets.New = append(buckets.New, customer)
		case !h.last.Before(almostBoundary):
			buckets.Active = append(buckets.Active, customer)
		case !h.last.Before(inactiveBoundary):
			buckets.AlmostInactive = append(buckets.AlmostInactive, customer)
		case !h.last.Before(lookbackBoundary):
			buckets.Inactive = append(buckets.Inactive, customer)
		}
	}

	sort.Strings(buckets.New)
	sort.Strings(buckets.Active)
	sort.Strings(buckets.AlmostInactive)
	sort.Strings(buckets.Inactive)
	return buckets
}

// ClassifyCustomerRecords is the CustomerPeriodRecord variant of Classify.
// Records are folded per customer before classification.
func ClassifyCustomerRecords(records []domain.CustomerPeriodRecord, referenceDate time.Time, th domain.EngagementThresholds) domain.EngagementBuckets {
	folded := domain.FoldCustomerRecords(records)
	rows := make([]domain.SaleRecord, 0, len(folded)*2)
	for _, rec := range folded {
		rows = append(rows,
			domain.SaleRecord{Date: rec.FirstPurchase, Customer: rec.Customer},
			domain.SaleRecord{Date: rec.LastPurchase, Customer: rec.Customer},
		)
	}
	return Classify(rows, referenceDate, th)
}

func foldHistories(rows []domain.SaleRecord) map[string]history {
	histories := make(map[string]history)
	for _, r := range rows {
		if r.Customer == "" {
			continue
		}
		h, ok := histories[r.Customer]
		if !ok {
			histories[r.Customer] = history{first: r.Date, last: r.Date}
			continue
		}
		if r.Date.Before(h.first) {
			h.first = r.Date
		}
		if r.Date.After(h.last) {
			h.last = r.Date
		}
		histories[r.Customer] = h
	}
	return histories
}
