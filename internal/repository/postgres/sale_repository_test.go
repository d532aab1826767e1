package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/vendalytics/backend-go/internal/domain"
)

func TestBuildSaleQueryWindowed(t *testing.T) {
	filter := domain.ReportFilter{
		Tenant:   "acme",
		Start:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		Customer: "mercado silva",
	}

	query, args := buildSaleQuery(filter, true)

	if len(args) != 4 {
		t.Fatalf("args = %d, want 4 (tenant, start, end, customer)", len(args))
	}
	if args[0] != "acme" {
		t.Fatalf("first arg = %v, want tenant", args[0])
	}
	for _, want := range []string{"tenant = $1", "sale_date >= $2", "sale_date <= $3", "customer = $4", "ORDER BY sale_date ASC"} {
		if !strings.Contains(query, want) {
			t.Fatalf("query %q missing %q", query, want)
		}
	}
}

func TestBuildSaleQueryUnwindowedIgnoresDates(t *testing.T) {
	filter := domain.ReportFilter{
		Tenant: "acme",
		Start:  time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}

	query, args := buildSaleQuery(filter, false)
	if len(args) != 1 {
		t.Fatalf("args = %d, want tenant only", len(args))
	}
	if strings.Contains(query, "sale_date >=") || strings.Contains(query, "sale_date <=") {
		t.Fatalf("unwindowed query must not constrain dates: %q", query)
	}
}

func TestBuildSaleQueryDimensionFilters(t *testing.T) {
	filter := domain.ReportFilter{
		Tenant:       "acme",
		Product:      "cola",
		CustomerType: "atacado",
	}

	query, args := buildSaleQuery(filter, true)
	if len(args) != 3 {
		t.Fatalf("args = %d, want 3", len(args))
	}
	if !strings.Contains(query, "product = $2") || !strings.Contains(query, "customer_type = $3") {
		t.Fatalf("query %q missing dimension placeholders", query)
	}
}
