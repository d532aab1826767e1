package domain

import "time"

// Metric pairs a value with its variation against the previous comparable
// period. Variation is a percentage change rounded to one decimal, except
// for gross margin where it is a simple difference in percentage points.
// Variation is 0 whenever the previous value is zero or negative.
type Metric struct {
	Value     float64 `json:"value"`
	Variation float64 `json:"variation"`
}

// MonthlyProjection extrapolates the running month from its partial value
// using the prior month's growth ratio. Only computed when the current
// period starts on the 1st of the reference month.
type MonthlyProjection struct {
	Revenue float64 `json:"revenue"`
	Orders  float64 `json:"orders"`
}

// KPISummary is the full KPI card set for a period.
type KPISummary struct {
	Revenue         Metric `json:"revenue"`
	Orders          Metric `json:"orders"`
	AverageTicket   Metric `json:"average_ticket"`
	GrossMarginPct  Metric `json:"gross_margin_pct"`
	UniqueCustomers Metric `json:"unique_customers"`
	Units           Metric `json:"units"`
	Packages        Metric `json:"packages"`
	Boxes           Metric `json:"boxes"`

	// AnnualRevenue is year-to-date revenue compared against the same
	// Jan-1-to-day window of the prior year.
	AnnualRevenue Metric `json:"annual_revenue"`

	// AnnualProjection scales YTD revenue to a full year using days elapsed
	// since Jan 1 of the last transaction date.
	AnnualProjection float64 `json:"annual_projection"`

	MonthlyProjection *MonthlyProjection `json:"monthly_projection,omitempty"`

	// ComparisonLabel names the previous comparable window ("mês anterior",
	// "semana anterior" or "período anterior").
	ComparisonLabel string `json:"comparison_label"`
}

// EngagementThresholds configures the recency boundaries, in months.
// Months are approximated as 30-day units everywhere in the engine.
type EngagementThresholds struct {
	AlmostInactiveMonths int `json:"almost_inactive_months"`
	InactiveMonths       int `json:"inactive_months"`
	MaxLookbackMonths    int `json:"max_lookback_months"`
}

// EngagementBuckets holds four disjoint customer sets classified against one
// reference date. A customer in none of them is beyond the max lookback.
type EngagementBuckets struct {
	ReferenceDate  time.Time `json:"reference_date"`
	New            []string  `json:"new"`
	Active         []string  `json:"active"`
	AlmostInactive []string  `json:"almost_inactive"`
	Inactive       []string  `json:"inactive"`
}

// CohortMonth is one month of the cohort evolution series.
type CohortMonth struct {
	Month       time.Time `json:"month"`
	Label       string    `json:"label"`
	New         int       `json:"new"`
	Maintained  int       `json:"maintained"`
	Reactivated int       `json:"reactivated"`
	Lost        int       `json:"lost"`
	Total       int       `json:"total"`
}
