// Package period provides the calendar arithmetic shared by every analytics
// view: day normalization, inclusive day counts, period-series generation and
// the month-aware previous-comparable-period rule.
package period

import (
	"fmt"
	"time"

	"github.com/vendalytics/backend-go/internal/domain"
)

// Comparison labels for the previous comparable period. Kept in the host
// product's locale; callers map them to display strings as needed.
const (
	LabelPreviousMonth  = "mês anterior"
	LabelPreviousWeek   = "semana anterior"
	LabelPreviousPeriod = "período anterior"
)

// Default bucket counts when generating a series backward from an end date.
const (
	DefaultDailyUnits   = 14
	DefaultWeeklyUnits  = 12
	DefaultMonthlyUnits = 3
)

// dayMonth30 approximates one month as 30 days across the whole engine.
// Deliberate simplification, not calendar-accurate months.
const dayMonth30 = 30 * 24 * time.Hour

// StartOfDay zeroes the time-of-day in the local calendar of t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay maxes out the time-of-day in the local calendar of t.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// InclusiveDayCount returns the number of calendar days spanning a..b
// inclusive, or 0 when b precedes a.
func InclusiveDayCount(a, b time.Time) int {
	sa, sb := StartOfDay(a), StartOfDay(b)
	if sb.Before(sa) {
		return 0
	}
	return int(sb.Sub(sa).Hours()/24) + 1
}

// SubtractMonths30 moves t back by the given number of 30-day months.
func SubtractMonths30(t time.Time, months int) time.Time {
	return t.Add(-time.Duration(months) * dayMonth30)
}

// Months30Between returns the span a..b measured in 30-day months. Negative
// spans collapse to 0.
func Months30Between(a, b time.Time) float64 {
	d := b.Sub(a)
	if d < 0 {
		return 0
	}
	return float64(d) / float64(dayMonth30)
}

// RangeOptions controls series generation. An explicit StartDate wins over
// TotalUnits; with neither, the granularity default applies.
type RangeOptions struct {
	StartDate  *time.Time
	TotalUnits int
}

// GenerateRanges produces an ordered, contiguous, non-overlapping series of
// period ranges ending at endDate. Weekly buckets are 7 days wide except
// possibly the last; monthly buckets align to calendar month boundaries;
// daily buckets are single days. Without an explicit start date the series
// is generated backward from endDate for TotalUnits buckets.
func GenerateRanges(endDate time.Time, g domain.Granularity, opts RangeOptions) []domain.PeriodRange {
	end := StartOfDay(endDate)

	units := opts.TotalUnits
	if units <= 0 {
		switch g {
		case domain.GranularityWeekly:
			units = DefaultWeeklyUnits
		case domain.GranularityMonthly:
			units = DefaultMonthlyUnits
		default:
			units = DefaultDailyUnits
		}
	}

	var start time.Time
	if opts.StartDate != nil {
		start = StartOfDay(*opts.StartDate)
	} else {
		switch g {
		case domain.GranularityWeekly:
			start = end.AddDate(0, 0, -(units*7 - 1))
		case domain.GranularityMonthly:
			first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
			start = first.AddDate(0, -(units - 1), 0)
		default:
			start = end.AddDate(0, 0, -(units - 1))
		}
	}
	if start.After(end) {
		return nil
	}

	switch g {
	case domain.GranularityWeekly:
		return generateFixedWidth(start, end, 7, domain.GranularityWeekly)
	case domain.GranularityMonthly:
		return generateMonthly(start, end)
	default:
		return generateFixedWidth(start, end, 1, domain.GranularityDaily)
	}
}

func generateFixedWidth(start, end time.Time, widthDays int, g domain.Granularity) []domain.PeriodRange {
	var ranges []domain.PeriodRange
	cur := start
	for !cur.After(end) {
		bucketEnd := cur.AddDate(0, 0, widthDays-1)
		if bucketEnd.After(end) {
			bucketEnd = end
		}
		ranges = append(ranges, domain.PeriodRange{
			Start:       cur,
			End:         EndOfDay(bucketEnd),
			Label:       rangeLabel(cur, bucketEnd, g),
			Granularity: g,
		})
		cur = bucketEnd.AddDate(0, 0, 1)
	}
	return ranges
}

func generateMonthly(start, end time.Time) []domain.PeriodRange {
	var ranges []domain.PeriodRange
	cur := start
	for !cur.After(end) {
		bucketEnd := LastDayOfMonth(cur)
		if bucketEnd.After(end) {
			bucketEnd = end
		}
		ranges = append(ranges, domain.PeriodRange{
			Start:       cur,
			End:         EndOfDay(bucketEnd),
			Label:       rangeLabel(cur, bucketEnd, domain.GranularityMonthly),
			Granularity: domain.GranularityMonthly,
		})
		cur = time.Date(cur.Year(), cur.Month(), 1, 0, 0, 0, 0, cur.Location()).AddDate(0, 1, 0)
	}
	return ranges
}

func rangeLabel(start, end time.Time, g domain.Granularity) string {
	switch g {
	case domain.GranularityMonthly:
		return fmt.Sprintf("%02d/%04d", int(start.Month()), start.Year())
	case domain.GranularityWeekly:
		return fmt.Sprintf("%02d/%02d - %02d/%02d",
			start.Day(), int(start.Month()), end.Day(), int(end.Month()))
	default:
		return fmt.Sprintf("%02d/%02d", start.Day(), int(start.Month()))
	}
}

// LastDayOfMonth returns the final calendar day of t's month, at 00:00.
func LastDayOfMonth(t time.Time) time.Time {
	firstNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstNext.AddDate(0, 0, -1)
}

// InferPreviousComparable selects the prior window used for delta
// comparisons. Month-over-month is the dominant business question, so the
// rule is asymmetric:
//
//   - a full calendar month compares to the previous full calendar month;
//   - a month-to-date window (starts on the 1st, ends mid-month) compares to
//     the same day-of-month range of the previous month;
//   - anything else, multi-month windows included, compares to the
//     immediately preceding window of equal day-length, with no gap and no
//     overlap.
func InferPreviousComparable(start, end time.Time) domain.PeriodRange {
	s, e := StartOfDay(start), StartOfDay(end)

	if s.Day() == 1 && sameMonth(s, e) && e.Equal(LastDayOfMonth(e)) {
		prevStart := s.AddDate(0, -1, 0)
		return domain.PeriodRange{
			Start:       prevStart,
			End:         EndOfDay(LastDayOfMonth(prevStart)),
			Label:       LabelPreviousMonth,
			Granularity: domain.GranularityMonthly,
		}
	}

	if s.Day() == 1 && sameMonth(s, e) {
		prevStart := time.Date(s.Year(), s.Month(), 1, 0, 0, 0, 0, s.Location()).AddDate(0, -1, 0)
		prevLast := LastDayOfMonth(prevStart)
		day := e.Day()
		if day > prevLast.Day() {
			day = prevLast.Day()
		}
		prevEnd := time.Date(prevStart.Year(), prevStart.Month(), day, 0, 0, 0, 0, s.Location())
		return domain.PeriodRange{
			Start:       prevStart,
			End:         EndOfDay(prevEnd),
			Label:       LabelPreviousMonth,
			Granularity: domain.GranularityMonthly,
		}
	}

	days := InclusiveDayCount(s, e)
	prevEnd := s.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))
	label := LabelPreviousPeriod
	if days == 7 {
		label = LabelPreviousWeek
	}
	g := domain.GranularityDaily
	if days == 7 {
		g = domain.GranularityWeekly
	}
	return domain.PeriodRange{
		Start:       prevStart,
		End:         EndOfDay(prevEnd),
		Label:       label,
		Granularity: g,
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
