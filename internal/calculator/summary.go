package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"PeriodReturns/internal/model"
)

// Summarize describes every instrument column of the table. NaN cells are skipped.
func Summarize(t *model.ResultTable) []model.InstrumentSummary {
	if t.Empty() {
		return nil
	}
	out := make([]model.InstrumentSummary, 0, len(t.Instruments))
	for _, id := range t.Instruments {
		values := definedValues(t.Column(id))
		s := model.InstrumentSummary{Instrument: id, Periods: len(values)}
		if len(values) == 0 {
			s.Mean, s.StdDev, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
			out = append(out, s)
			continue
		}
		s.Mean = stat.Mean(values, nil)
		if len(values) > 1 {
			s.StdDev = stat.StdDev(values, nil)
		}
		s.Min = floats.Min(values)
		s.Max = floats.Max(values)
		positive := 0
		for _, v := range values {
			if v > 0 {
				positive++
			}
		}
		s.PositiveRate = float64(positive) / float64(len(values))
		out = append(out, s)
	}
	return out
}

func definedValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
