package model

import "math"

// PeriodReturnRow holds the percent return of each instrument over one
// resolved period. NaN marks an undefined return.
type PeriodReturnRow struct {
	Period  ResolvedPeriod
	Returns map[string]float64
}

func (r PeriodReturnRow) Label() string { return r.Period.Label() }

// Value returns NaN when the instrument has no value in the row.
func (r PeriodReturnRow) Value(instrument string) float64 {
	if v, ok := r.Returns[instrument]; ok {
		return v
	}
	return math.NaN()
}

// ResultTable is the period × instrument matrix, rows in chronological order.
// Callers must check Empty before rendering.
type ResultTable struct {
	Instruments []string
	Rows        []PeriodReturnRow
}

func (t *ResultTable) Empty() bool {
	return t == nil || len(t.Rows) == 0 || len(t.Instruments) == 0
}

func (t *ResultTable) Labels() []string {
	labels := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		labels[i] = r.Label()
	}
	return labels
}

// Column returns one instrument's values in row order.
func (t *ResultTable) Column(instrument string) []float64 {
	col := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		col[i] = r.Value(instrument)
	}
	return col
}

// InstrumentSummary describes the distribution of one column.
type InstrumentSummary struct {
	Instrument   string
	Periods      int
	Mean         float64
	StdDev       float64
	Min          float64
	Max          float64
	PositiveRate float64 // share of periods with a return > 0
}
