package domain

import "time"

// Granularity selects the bucket width for a period series.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// PeriodRange is one bucket in a period series. Start and End are inclusive
// day boundaries (Start at 00:00:00, End at 23:59:59.999999999). Series are
// contiguous and non-overlapping; the trailing bucket may be shorter than
// the nominal width.
type PeriodRange struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Label       string      `json:"label"`
	Granularity Granularity `json:"granularity"`
}

// Contains reports whether t falls inside the range, boundaries included.
func (p PeriodRange) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Days returns the inclusive day span of the range.
func (p PeriodRange) Days() int {
	a := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, p.Start.Location())
	b := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 0, 0, 0, 0, p.End.Location())
	return int(b.Sub(a).Hours()/24) + 1
}
