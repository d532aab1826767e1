package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportFilter scopes an analytics computation. Tenant is resolved upstream;
// the engine only uses it for cache keying.
type ReportFilter struct {
	Tenant       string    `json:"tenant"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Customer     string    `json:"customer,omitempty"`
	Product      string    `json:"product,omitempty"`
	CustomerType string    `json:"customer_type,omitempty"`
}

// Signature returns a stable string identifying the filter for cache keys.
func (f ReportFilter) Signature() string {
	parts := []string{
		"start=" + f.Start.Format("2006-01-02"),
		"end=" + f.End.Format("2006-01-02"),
	}
	if f.Customer != "" {
		parts = append(parts, "customer="+f.Customer)
	}
	if f.Product != "" {
		parts = append(parts, "product="+f.Product)
	}
	if f.CustomerType != "" {
		parts = append(parts, "customer_type="+f.CustomerType)
	}
	return strings.Join(parts, "|")
}

// Matches reports whether a record passes the dimensional filters. The date
// window is applied separately since several views need the full history.
func (f ReportFilter) Matches(r SaleRecord) bool {
	if f.Customer != "" && r.Customer != f.Customer {
		return false
	}
	if f.Product != "" && r.Product != f.Product {
		return false
	}
	if f.CustomerType != "" && r.CustomerType != f.CustomerType {
		return false
	}
	return true
}

// Validate rejects filters the handlers should never forward.
func (f ReportFilter) Validate() error {
	if f.Tenant == "" {
		return fmt.Errorf("tenant is required")
	}
	if f.Start.IsZero() || f.End.IsZero() {
		return fmt.Errorf("period start and end are required")
	}
	if f.End.Before(f.Start) {
		return fmt.Errorf("period end %s precedes start %s",
			f.End.Format("2006-01-02"), f.Start.Format("2006-01-02"))
	}
	return nil
}

// DashboardSummary aggregates every dashboard view in one payload.
type DashboardSummary struct {
	KPIs             KPISummary        `json:"kpis"`
	TopCustomers     []RankingEntry    `json:"top_customers"`
	TopProducts      []RankingEntry    `json:"top_products"`
	TopCustomerTypes []RankingEntry    `json:"top_customer_types"`
	RankingUp        []RankingMover    `json:"ranking_up"`
	RankingDown      []RankingMover    `json:"ranking_down"`
	Engagement       EngagementBuckets `json:"engagement"`
	Cohort           []CohortMonth     `json:"cohort"`
	CLV              CLVReport         `json:"clv"`
}
