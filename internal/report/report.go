// Package report renders a period return table for people: CSV, Markdown and
// an XLSX workbook with a heatmap sheet.
package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"PeriodReturns/internal/model"
)

// Report is one rendered run of the pipeline.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Source      string
	SpanStart   model.Date
	SpanEnd     model.Date
	Periods     int // calendar periods enumerated over the span
	Table       *model.ResultTable
	Summary     []model.InstrumentSummary
}

// Dropped is the number of calendar periods that produced no row.
func (r *Report) Dropped() int {
	if r.Table == nil {
		return r.Periods
	}
	return r.Periods - len(r.Table.Rows)
}

// formatPercent renders v with two decimals; undefined values render as empty.
func formatPercent(v float64, empty string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return empty
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// roundPercent keeps two decimals for spreadsheet cells.
func roundPercent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
