package calculator

import (
	"math"

	"PeriodReturns/internal/model"
)

// PercentReturn computes (end/start - 1) * 100. A zero or missing start price
// and a missing end price yield NaN instead of an error.
func PercentReturn(start, end float64) float64 {
	if start == 0 || math.IsNaN(start) || math.IsNaN(end) {
		return math.NaN()
	}
	return (end/start - 1) * 100
}

// ComputeReturns builds the period × instrument table. Periods that cannot be
// resolved onto trading dates are dropped. Missing cells are gap-filled
// chronologically and instruments with no value anywhere are omitted.
// The inputs are not modified.
func ComputeReturns(series *model.PriceSeries, periods []model.Period) *model.ResultTable {
	table := &model.ResultTable{}
	if series.Len() == 0 || len(periods) == 0 {
		return table
	}

	table.Instruments = append([]string(nil), series.Instruments...)
	for _, rp := range ResolvedPeriods(series, periods) {
		row := model.PeriodReturnRow{
			Period:  rp,
			Returns: make(map[string]float64, len(series.Instruments)),
		}
		for _, id := range series.Instruments {
			row.Returns[id] = PercentReturn(series.PriceAt(id, rp.Start), series.PriceAt(id, rp.End))
		}
		table.Rows = append(table.Rows, row)
	}

	return FillGaps(table)
}

// ResolvedPeriods returns the periods that survive resolution, in order.
func ResolvedPeriods(series *model.PriceSeries, periods []model.Period) []model.ResolvedPeriod {
	var out []model.ResolvedPeriod
	for _, p := range periods {
		if rp, ok := ResolvePeriod(series, p); ok {
			out = append(out, rp)
		}
	}
	return out
}
