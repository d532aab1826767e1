package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestReadCSVPortugueseHeaders(t *testing.T) {
	csvData := strings.Join([]string{
		"Data,Cliente,Produto,Tipo Cliente,Quantidade,Fardos,Caixas,Valor,Custo",
		`15/03/2024,Mercado Silva,Refrigerante 2L,varejo,10,2,1,"1.234,56","800,00"`,
		`16/03/2024,Atacadão Norte,Suco 1L,atacado,100,10,5,"10.000,00",`,
	}, "\n")

	result, err := NewNormalizer(DefaultColumnMap()).ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(result.Rows))
	}

	first := result.Rows[0]
	if !first.Date.Equal(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v, want 2024-03-15", first.Date)
	}
	if first.Customer != "Mercado Silva" {
		t.Fatalf("customer = %q", first.Customer)
	}
	if first.Revenue != 1234.56 {
		t.Fatalf("revenue = %v, want 1234.56", first.Revenue)
	}
	if !first.HasCost || first.Cost != 800 {
		t.Fatalf("cost = %v (has=%v), want 800 with HasCost", first.Cost, first.HasCost)
	}

	second := result.Rows[1]
	if second.HasCost {
		t.Fatal("blank cost cell must leave HasCost unset")
	}
	if second.Quantity != 100 || second.Packages != 10 || second.Boxes != 5 {
		t.Fatalf("volumes = %v/%v/%v", second.Quantity, second.Packages, second.Boxes)
	}
}

func TestReadCSVRejectsMalformedRows(t *testing.T) {
	csvData := strings.Join([]string{
		"date,customer,revenue",
		"2024-01-10,acme,100",
		",orphan,50",     // empty date
		"2024-01-11,,75", // empty customer
		"not-a-date,beta,25",
		"2024-01-12,gamma,12.5",
	}, "\n")

	result, err := NewNormalizer(DefaultColumnMap()).ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (acme, gamma)", len(result.Rows))
	}
	if result.SkippedNoCustomer != 1 {
		t.Fatalf("skipped no-customer = %d, want 1", result.SkippedNoCustomer)
	}
	if result.SkippedBadDate != 2 {
		t.Fatalf("skipped bad-date = %d, want 2", result.SkippedBadDate)
	}
}

func TestReadCSVMissingRequiredColumns(t *testing.T) {
	csvData := "produto,valor\nx,100\n"
	if _, err := NewNormalizer(DefaultColumnMap()).ReadCSV(strings.NewReader(csvData)); err == nil {
		t.Fatal("expected error for header without date/customer columns")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234.56", 1234.56},
		{"10.000,00", 10000},
		{"0,5", 0.5},
		{"R$ 99,90", 99.9},
		{"", 0},
		{"abc", 0},
		{"1000", 1000},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Fatalf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"05/03/2024", "2024-03-05", "05-03-2024"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDate("31/02/2024"); err == nil {
		t.Fatal("expected error for impossible date")
	}
}
