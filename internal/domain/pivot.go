package domain

// PivotMetric selects which value a pivot table accumulates.
type PivotMetric string

const (
	PivotRevenue  PivotMetric = "revenue"
	PivotQuantity PivotMetric = "quantity"
	PivotBoxes    PivotMetric = "boxes"
)

// PivotRow is one entity row of an entity × period matrix. Values is aligned
// with the table's period series.
type PivotRow struct {
	Entity string    `json:"entity"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
}

// PivotTable is an entity × period matrix with a grand-total row. Rows are
// sorted descending by row total.
type PivotTable struct {
	Metric  PivotMetric   `json:"metric"`
	Periods []PeriodRange `json:"periods"`
	Rows    []PivotRow    `json:"rows"`
	Total   PivotRow      `json:"total"`
}
