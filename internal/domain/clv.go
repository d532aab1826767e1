package domain

import "time"

// UncategorizedLabel groups CLV records without a customer type.
const UncategorizedLabel = "Sem categoria"

// CLVRecord carries one customer's lifetime metrics.
type CLVRecord struct {
	Customer      string    `json:"customer"`
	CustomerType  string    `json:"customer_type"`
	TotalValue    float64   `json:"total_value"`
	TotalOrders   int       `json:"total_orders"`
	FirstPurchase time.Time `json:"first_purchase"`
	LastPurchase  time.Time `json:"last_purchase"`
	AverageTicket float64   `json:"average_ticket"`

	// PurchaseFrequency is orders per month of lifespan.
	PurchaseFrequency float64 `json:"purchase_frequency"`

	// LifespanMonths is (last - first) in 30-day months, floored at 1.
	LifespanMonths float64 `json:"customer_lifespan"`

	// Historical is money already spent (== TotalValue); Predictive projects
	// future spend from ticket, frequency and a capped lifespan factor.
	Historical float64 `json:"clv_historical"`
	Predictive float64 `json:"clv_predictive"`

	// RiskScore is a 0-100 churn risk derived from months since last purchase.
	RiskScore float64 `json:"clv_risk_score"`
}

// CLVBucket is one fixed revenue band of the CLV distribution. Max < 0
// marks the open-ended top band.
type CLVBucket struct {
	Label      string  `json:"label"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// CLVSegment is the per-customer-type rollup.
type CLVSegment struct {
	CustomerType string  `json:"customer_type"`
	Customers    int     `json:"customers"`
	AvgCLV       float64 `json:"avg_clv"`
	TotalValue   float64 `json:"total_value"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgLifespan  float64 `json:"avg_lifespan"`
}

// CLVReport bundles the per-customer records with their derived views.
type CLVReport struct {
	Customers    []CLVRecord  `json:"customers"`
	Distribution []CLVBucket  `json:"distribution"`
	Segments     []CLVSegment `json:"segments"`
}
