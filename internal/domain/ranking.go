package domain

// OtherLabel names the synthetic tail aggregate of a top-N ranking.
const OtherLabel = "Outros"

// RankingEntry is one row of a top-N breakdown. Other marks the synthetic
// aggregate of everything outside the top N; Name is empty in that case and
// DisplayName resolves to OtherLabel.
type RankingEntry struct {
	Name           string  `json:"name"`
	Other          bool    `json:"other"`
	Revenue        float64 `json:"revenue"`
	Cost           float64 `json:"cost"`
	GrossMarginPct int     `json:"gross_margin_pct"`
}

// DisplayName returns the presentable name of the entry.
func (e RankingEntry) DisplayName() string {
	if e.Other {
		return OtherLabel
	}
	return e.Name
}

// RankingMover is one customer's revenue movement between two periods,
// ranked by absolute change so large movers dominate small-base swings.
type RankingMover struct {
	Customer string  `json:"customer"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
}
