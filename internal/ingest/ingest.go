// Package ingest normalizes loosely-typed spreadsheet/CSV rows into
// domain.SaleRecord values the analytics engine can consume.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vendalytics/backend-go/internal/domain"
)

// ColumnMap maps logical field names to the physical column headers used by a
// tenant's spreadsheets. Header matching is case-insensitive and ignores
// spaces, underscores, dots and dashes.
type ColumnMap struct {
	Date         []string
	Customer     []string
	Product      []string
	CustomerType []string
	Quantity     []string
	Packages     []string
	Boxes        []string
	Revenue      []string
	Cost         []string
}

// DefaultColumnMap covers the headers seen in the field, Portuguese first.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		Date:         []string{"data", "date", "data venda"},
		Customer:     []string{"cliente", "customer", "razao social"},
		Product:      []string{"produto", "product", "descricao"},
		CustomerType: []string{"tipo cliente", "tipo", "customer type", "segmento"},
		Quantity:     []string{"quantidade", "qtd", "quantity", "unidades"},
		Packages:     []string{"fardos", "packages", "pacotes"},
		Boxes:        []string{"caixas", "boxes", "cx"},
		Revenue:      []string{"valor", "receita", "revenue", "valor total", "total"},
		Cost:         []string{"custo", "cost", "custo total"},
	}
}

// dateLayouts are tried in order. Day-first layouts come before ISO because
// the source spreadsheets are Brazilian.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
}

// Result carries the accepted rows plus counts for rows dropped during
// normalization.
type Result struct {
	Rows              []domain.SaleRecord
	SkippedNoCustomer int
	SkippedBadDate    int
}

// Skipped is the total number of rejected rows.
func (r Result) Skipped() int { return r.SkippedNoCustomer + r.SkippedBadDate }

// Normalizer turns raw CSV rows into SaleRecords using a column map.
type Normalizer struct {
	columns ColumnMap
}

func NewNormalizer(columns ColumnMap) *Normalizer {
	return &Normalizer{columns: columns}
}

// ReadCSV parses an entire CSV stream. The first row must be a header.
// Rows with an empty customer or an unparsable date are dropped and counted,
// never surfaced as errors.
func (n *Normalizer) ReadCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}

	colIndex := func(names []string) int {
		targets := make(map[string]struct{}, len(names))
		for _, name := range names {
			targets[normalizeColumnName(name)] = struct{}{}
		}
		for i, h := range header {
			if _, ok := targets[normalizeColumnName(h)]; ok {
				return i
			}
		}
		return -1
	}

	idxDate := colIndex(n.columns.Date)
	idxCustomer := colIndex(n.columns.Customer)
	idxProduct := colIndex(n.columns.Product)
	idxType := colIndex(n.columns.CustomerType)
	idxQuantity := colIndex(n.columns.Quantity)
	idxPackages := colIndex(n.columns.Packages)
	idxBoxes := colIndex(n.columns.Boxes)
	idxRevenue := colIndex(n.columns.Revenue)
	idxCost := colIndex(n.columns.Cost)

	if idxDate < 0 || idxCustomer < 0 {
		return Result{}, fmt.Errorf("header %v missing date or customer column", header)
	}

	var result Result
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read row: %w", err)
		}

		row, ok := n.normalize(record, idxDate, idxCustomer, idxProduct, idxType, idxQuantity, idxPackages, idxBoxes, idxRevenue, idxCost, &result)
		if !ok {
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if skipped := result.Skipped(); skipped > 0 {
		log.Warn().
			Int("accepted", len(result.Rows)).
			Int("skipped", skipped).
			Msg("dropped malformed rows during normalization")
	}
	return result, nil
}

func (n *Normalizer) normalize(record []string, idxDate, idxCustomer, idxProduct, idxType, idxQuantity, idxPackages, idxBoxes, idxRevenue, idxCost int, result *Result) (domain.SaleRecord, bool) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	customer := get(idxCustomer)
	if customer == "" {
		result.SkippedNoCustomer++
		return domain.SaleRecord{}, false
	}

	date, err := ParseDate(get(idxDate))
	if err != nil {
		result.SkippedBadDate++
		return domain.SaleRecord{}, false
	}

	costRaw := get(idxCost)
	row := domain.SaleRecord{
		Date:         date,
		Customer:     customer,
		Product:      get(idxProduct),
		CustomerType: get(idxType),
		Quantity:     ParseNumber(get(idxQuantity)),
		Packages:     ParseNumber(get(idxPackages)),
		Boxes:        ParseNumber(get(idxBoxes)),
		Revenue:      ParseNumber(get(idxRevenue)),
	}
	if costRaw != "" {
		row.Cost = ParseNumber(costRaw)
		row.HasCost = true
	}
	return row, true
}

// ParseDate tries each supported layout in order.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseNumber parses Brazilian-formatted values like "1.234,56" as well as
// plain "1234.56". Currency prefixes and blank values collapse to 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		// "1.234,56": dots are thousands separators, comma is decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	return columnNameSanitizer.Replace(strings.TrimSpace(strings.ToLower(name)))
}
