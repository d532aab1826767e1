package ranking

import (
	"math"
	"testing"
	"time"

	"github.com/vendalytics/backend-go/internal/domain"
)

func row(customer, product string, revenue, cost float64) domain.SaleRecord {
	return domain.SaleRecord{
		Date:     time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Customer: customer,
		Product:  product,
		Revenue:  revenue,
		Cost:     cost,
		HasCost:  cost != 0,
	}
}

func TestTopFoldsTailIntoOther(t *testing.T) {
	var rows []domain.SaleRecord
	names := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"}
	for i, name := range names {
		rows = append(rows, row(name, "p", float64(700-i*100), 50))
	}

	entries := Top(rows, ByCustomer, 5)
	if len(entries) != 6 {
		t.Fatalf("got %d entries, want 5 + Outros", len(entries))
	}
	if entries[0].Name != "c1" || entries[4].Name != "c5" {
		t.Fatalf("unexpected ordering: %+v", entries)
	}
	last := entries[5]
	if !last.Other || last.DisplayName() != domain.OtherLabel {
		t.Fatalf("tail entry not Outros: %+v", last)
	}
	// c6 (200) + c7 (100)
	if last.Revenue != 300 {
		t.Fatalf("Outros revenue: got %v, want 300", last.Revenue)
	}
}

// sum(topN revenue) + Outros revenue must equal sum(all rows) exactly.
func TestTopPreservesRevenueTotal(t *testing.T) {
	var rows []domain.SaleRecord
	var want float64
	for i := 0; i < 23; i++ {
		r := row(string(rune('a'+i%20)), "p", float64(i*13%101), float64(i*7%53))
		rows = append(rows, r)
		want += r.Revenue
	}

	var got float64
	for _, e := range Top(rows, ByCustomer, 5) {
		got += e.Revenue
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("revenue leaked: got %v, want %v", got, want)
	}
}

func TestTopFewerEntriesThanN(t *testing.T) {
	rows := []domain.SaleRecord{row("c1", "p", 100, 10), row("c2", "p", 50, 5)}
	entries := Top(rows, ByCustomer, 5)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (no Outros)", len(entries))
	}
	for _, e := range entries {
		if e.Other {
			t.Fatalf("unexpected Outros entry: %+v", entries)
		}
	}
}

func TestTopEmptyRows(t *testing.T) {
	if entries := Top(nil, ByProduct, 5); len(entries) != 0 {
		t.Fatalf("got %+v, want empty", entries)
	}
}

func TestTopGroupsUncategorizedCustomerType(t *testing.T) {
	rows := []domain.SaleRecord{
		{Customer: "c1", CustomerType: "", Revenue: 10},
		{Customer: "c2", CustomerType: "", Revenue: 20},
		{Customer: "c3", CustomerType: "varejo", Revenue: 5},
	}
	entries := Top(rows, ByCustomerType, 5)
	if entries[0].Name != domain.UncategorizedLabel || entries[0].Revenue != 30 {
		t.Fatalf("uncategorized grouping: %+v", entries)
	}
}

func TestGrossMarginPctEdges(t *testing.T) {
	cases := []struct {
		revenue, cost float64
		want          int
	}{
		{1000, 400, 60},
		{1000, 0, 100},
		{0, 500, -100},
		{0, 0, 0},
		{100, 350, -100}, // clamped
		{300, 100, 67},   // rounded
	}
	for _, tc := range cases {
		if got := grossMarginPct(tc.revenue, tc.cost); got != tc.want {
			t.Fatalf("grossMarginPct(%v, %v): got %d, want %d", tc.revenue, tc.cost, got, tc.want)
		}
	}
}

func TestMoversRankByAbsoluteChange(t *testing.T) {
	current := []domain.SaleRecord{
		row("grande", "p", 10000, 0), // +2000
		row("pequeno", "p", 30, 0),   // +20 but +200% in relative terms
		row("caiu", "p", 100, 0),     // -900
		row("igual", "p", 50, 0),     // flat
	}
	previous := []domain.SaleRecord{
		row("grande", "p", 8000, 0),
		row("pequeno", "p", 10, 0),
		row("caiu", "p", 1000, 0),
		row("igual", "p", 50, 0),
		row("sumiu", "p", 400, 0), // -400
	}

	up, down := Movers(current, previous, 3)
	if len(up) != 2 || up[0].Customer != "grande" || up[1].Customer != "pequeno" {
		t.Fatalf("up movers: %+v", up)
	}
	if up[0].Change != 2000 {
		t.Fatalf("grande change: got %v, want 2000", up[0].Change)
	}
	if len(down) != 2 || down[0].Customer != "caiu" || down[1].Customer != "sumiu" {
		t.Fatalf("down movers: %+v", down)
	}
	if down[0].Change != -900 {
		t.Fatalf("caiu change: got %v, want -900", down[0].Change)
	}
}

func TestMoversEmpty(t *testing.T) {
	up, down := Movers(nil, nil, 5)
	if len(up) != 0 || len(down) != 0 {
		t.Fatalf("got up=%v down=%v, want empty", up, down)
	}
}
