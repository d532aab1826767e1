// Package cohort counts month-by-month customer transitions: maintained,
// new, reactivated and lost, with a running total per month.
package cohort

import (
	"fmt"
	"sort"
	"time"

	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/domain"
)

// DefaultMonths is the trailing window when none is requested.
const DefaultMonths = 6

// Evolution walks the trailing months window ending at the reference date's
// month and classifies each month's customers by their most recent purchase
// strictly before the month start:
//
//   - new: no prior purchase exists;
//   - maintained: the prior purchase falls within the almost-inactive window
//     immediately before the month;
//   - reactivated: the prior purchase is older than that window;
//   - lost: last purchased inside the almost-inactive window preceding the
//     month and did not purchase again by the month's end.
//
// A zero reference date defaults to the maximum transaction date present.
func Evolution(rows []domain.SaleRecord, months int, almostInactiveMonths int, referenceDate time.Time) []domain.CohortMonth {
	if months <= 0 {
		months = DefaultMonths
	}
	if len(rows) == 0 {
		return []domain.CohortMonth{}
	}
	if referenceDate.IsZero() {
		for _, r := range rows {
			if r.Date.After(referenceDate) {
				referenceDate = r.Date
			}
		}
	}

	dates := purchaseDatesByCustomer(rows)
	window := time.Duration(almostInactiveMonths) * 30 * 24 * time.Hour

	result := make([]domain.CohortMonth, 0, months)
	firstMonth := time.Date(referenceDate.Year(), referenceDate.Month(), 1, 0, 0, 0, 0, referenceDate.Location()).
		AddDate(0, -(months - 1), 0)

	runningTotal := 0
	for i := 0; i < months; i++ {
		monthStart := firstMonth.AddDate(0, i, 0)
		monthEnd := period.EndOfDay(period.LastDayOfMonth(monthStart))
		windowStart := monthStart.Add(-window)

		m := domain.CohortMonth{
			Month: monthStart,
			Label: fmt.Sprintf("%02d/%04d", int(monthStart.Month()), monthStart.Year()),
		}

		candidates := 0
		for _, ds := range dates {
			inMonth := anyWithin(ds, monthStart, monthEnd)
			prior, hasPrior := lastBefore(ds, monthStart)

			if inMonth {
				candidates++
				switch {
				case !hasPrior:
					m.New++
				case !prior.Before(windowStart):
					m.Maintained++
				default:
					m.Reactivated++
				}
				continue
			}

			// No purchase this month: lost if the customer's last purchase
			// sits inside the almost-inactive window that preceded it.
			if hasPrior && !prior.Before(windowStart) {
				m.Lost++
			}
		}

		if i == 0 {
			runningTotal = candidates
		} else {
			runningTotal += m.New + m.Reactivated - m.Lost
		}
		m.Total = runningTotal
		result = append(result, m)
	}

	return result
}

func purchaseDatesByCustomer(rows []domain.SaleRecord) map[string][]time.Time {
	dates := make(map[string][]time.Time)
	for _, r := range rows {
		if r.Customer == "" {
			continue
		}
		dates[r.Customer] = append(dates[r.Customer], r.Date)
	}
	for _, ds := range dates {
		sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
	}
	return dates
}

// lastBefore returns the most recent purchase strictly before t.
func lastBefore(sorted []time.Time, t time.Time) (time.Time, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return !sorted[i].Before(t) })
	if i == 0 {
		return time.Time{}, false
	}
	return sorted[i-1], true
}

func anyWithin(sorted []time.Time, start, end time.Time) bool {
	i := sort.Search(len(sorted), func(i int) bool { return !sorted[i].Before(start) })
	return i < len(sorted) && !sorted[i].After(end)
}
