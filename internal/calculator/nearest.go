package calculator

import (
	"slices"

	"PeriodReturns/internal/model"
)

// ResolveForward returns the smallest indexed date on or after d.
// dates must be sorted ascending.
func ResolveForward(dates []model.Date, d model.Date) (model.Date, bool) {
	i, _ := slices.BinarySearchFunc(dates, d, model.Date.Compare)
	if i >= len(dates) {
		return model.Date{}, false
	}
	return dates[i], true
}

// ResolveBackward returns the largest indexed date on or before d.
func ResolveBackward(dates []model.Date, d model.Date) (model.Date, bool) {
	i, found := slices.BinarySearchFunc(dates, d, model.Date.Compare)
	if found {
		return dates[i], true
	}
	if i == 0 {
		return model.Date{}, false
	}
	return dates[i-1], true
}

// ResolvePeriod snaps the period start forward and its end backward onto the
// series' trading dates. ok is false when either snap fails or the window
// holds no trading date at all.
func ResolvePeriod(series *model.PriceSeries, p model.Period) (model.ResolvedPeriod, bool) {
	if series.Len() == 0 {
		return model.ResolvedPeriod{}, false
	}
	start, ok := ResolveForward(series.Dates, p.Start)
	if !ok {
		return model.ResolvedPeriod{}, false
	}
	end, ok := ResolveBackward(series.Dates, p.End)
	if !ok {
		return model.ResolvedPeriod{}, false
	}
	if start.After(end) {
		return model.ResolvedPeriod{}, false
	}
	return model.ResolvedPeriod{Calendar: p, Start: start, End: end}, true
}
