package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PeriodReturns/internal/model"
)

func TestSummarize(t *testing.T) {
	table := &model.ResultTable{
		Instruments: []string{"A", "B"},
		Rows: []model.PeriodReturnRow{
			{Returns: map[string]float64{"A": 10, "B": -4}},
			{Returns: map[string]float64{"A": -2, "B": math.NaN()}},
			{Returns: map[string]float64{"A": 4, "B": 6}},
		},
	}

	sums := Summarize(table)
	require.Len(t, sums, 2)

	a := sums[0]
	assert.Equal(t, "A", a.Instrument)
	assert.Equal(t, 3, a.Periods)
	assert.InDelta(t, 4.0, a.Mean, 1e-9)
	assert.InDelta(t, 6.0, a.StdDev, 1e-9)
	assert.Equal(t, -2.0, a.Min)
	assert.Equal(t, 10.0, a.Max)
	assert.InDelta(t, 2.0/3.0, a.PositiveRate, 1e-9)

	b := sums[1]
	assert.Equal(t, 2, b.Periods)
	assert.InDelta(t, 1.0, b.Mean, 1e-9)
	assert.InDelta(t, 0.5, b.PositiveRate, 1e-9)
}

func TestSummarize_SingleValueAndEmpty(t *testing.T) {
	table := &model.ResultTable{
		Instruments: []string{"A"},
		Rows:        []model.PeriodReturnRow{{Returns: map[string]float64{"A": 3}}},
	}
	sums := Summarize(table)
	require.Len(t, sums, 1)
	assert.Equal(t, 0.0, sums[0].StdDev)
	assert.Equal(t, 3.0, sums[0].Mean)

	assert.Nil(t, Summarize(&model.ResultTable{}))
}
