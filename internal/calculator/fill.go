package calculator

import (
	"math"

	"PeriodReturns/internal/model"
)

// ForwardBackwardFill replaces NaN entries with the nearest preceding value,
// then fills leading NaNs with the nearest following value. An all-NaN input
// stays all-NaN. The input slice is not modified.
func ForwardBackwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	return out
}

// FillGaps reconciles instruments on non-aligned calendars: each column is
// forward- then backward-filled across rows, and columns left entirely
// undefined are dropped from the table. A new table is returned.
func FillGaps(t *model.ResultTable) *model.ResultTable {
	out := &model.ResultTable{Rows: make([]model.PeriodReturnRow, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = model.PeriodReturnRow{Period: r.Period, Returns: make(map[string]float64, len(t.Instruments))}
	}
	if len(t.Rows) == 0 {
		return out
	}

	for _, id := range t.Instruments {
		filled := ForwardBackwardFill(t.Column(id))
		if allNaN(filled) {
			continue
		}
		out.Instruments = append(out.Instruments, id)
		for i, v := range filled {
			out.Rows[i].Returns[id] = v
		}
	}
	return out
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
