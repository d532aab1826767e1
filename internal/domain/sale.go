package domain

import "time"

// SaleRecord is one transaction line, already tenant-scoped, with dates and
// numbers parsed upstream. Records with an empty customer or an unparsable
// date never reach the analytics packages; the ingest layer drops them.
type SaleRecord struct {
	Date         time.Time `json:"date" db:"sale_date"`
	Customer     string    `json:"customer" db:"customer"`
	Product      string    `json:"product" db:"product"`
	CustomerType string    `json:"customer_type" db:"customer_type"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Packages     float64   `json:"packages" db:"packages"`
	Boxes        float64   `json:"boxes" db:"boxes"`
	Revenue      float64   `json:"revenue" db:"revenue"`
	Cost         float64   `json:"cost" db:"cost"`
	HasCost      bool      `json:"has_cost" db:"has_cost"`
}

// Margin returns revenue minus cost, or 0 when the record carries no cost.
func (s SaleRecord) Margin() float64 {
	if !s.HasCost {
		return 0
	}
	return s.Revenue - s.Cost
}

// MarginPercent returns the margin as a fraction of revenue (0 when revenue <= 0).
func (s SaleRecord) MarginPercent() float64 {
	if !s.HasCost || s.Revenue <= 0 {
		return 0
	}
	return s.Margin() / s.Revenue
}

// CustomerPeriodRecord is one customer's activity inside a reporting slice.
// The same customer may appear in several slices; fold before classifying.
type CustomerPeriodRecord struct {
	Customer      string    `json:"customer" db:"customer"`
	CustomerType  string    `json:"customer_type" db:"customer_type"`
	FirstPurchase time.Time `json:"first_purchase" db:"first_purchase"`
	LastPurchase  time.Time `json:"last_purchase" db:"last_purchase"`
	Value         float64   `json:"value" db:"value"`
	Orders        int       `json:"orders" db:"orders"`
}

// FoldCustomerRecords merges multiple slices per customer into one record:
// values and orders are summed, first purchase takes the minimum and last
// purchase the maximum. Output order follows first appearance in the input.
func FoldCustomerRecords(records []CustomerPeriodRecord) []CustomerPeriodRecord {
	index := make(map[string]int, len(records))
	folded := make([]CustomerPeriodRecord, 0, len(records))

	for _, rec := range records {
		if rec.Customer == "" {
			continue
		}
		i, ok := index[rec.Customer]
		if !ok {
			index[rec.Customer] = len(folded)
			folded = append(folded, rec)
			continue
		}
		folded[i].Value += rec.Value
		folded[i].Orders += rec.Orders
		if rec.FirstPurchase.Before(folded[i].FirstPurchase) {
			folded[i].FirstPurchase = rec.FirstPurchase
		}
		if rec.LastPurchase.After(folded[i].LastPurchase) {
			folded[i].LastPurchase = rec.LastPurchase
		}
		if folded[i].CustomerType == "" {
			folded[i].CustomerType = rec.CustomerType
		}
	}

	return folded
}
