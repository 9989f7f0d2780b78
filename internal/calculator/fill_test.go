package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PeriodReturns/internal/model"
)

func TestForwardBackwardFill(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"no gaps", []float64{1, 2, 3}, []float64{1, 2, 3}},
		{"inner gap", []float64{1, nan, 3}, []float64{1, 1, 3}},
		{"leading gap", []float64{nan, nan, 3, nan}, []float64{3, 3, 3, 3}},
		{"trailing gap", []float64{1, 2, nan, nan}, []float64{1, 2, 2, 2}},
		{"empty", []float64{}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForwardBackwardFill(tt.in))
		})
	}

	all := ForwardBackwardFill([]float64{nan, nan})
	assert.True(t, math.IsNaN(all[0]) && math.IsNaN(all[1]))

	in := []float64{nan, 1}
	ForwardBackwardFill(in)
	assert.True(t, math.IsNaN(in[0]), "input must not be modified")
}

func TestFillGaps_InterleavedInstruments(t *testing.T) {
	// A has values in rows 1, 3, 5 and B in rows 2, 4
	nan := math.NaN()
	a := []float64{1, nan, 3, nan, 5}
	b := []float64{nan, 2, nan, 4, nan}

	table := &model.ResultTable{Instruments: []string{"A", "B"}}
	for i := range a {
		table.Rows = append(table.Rows, model.PeriodReturnRow{
			Returns: map[string]float64{"A": a[i], "B": b[i]},
		})
	}

	filled := FillGaps(table)
	require.Equal(t, []string{"A", "B"}, filled.Instruments)
	assert.Equal(t, []float64{1, 1, 3, 3, 5}, filled.Column("A"))
	assert.Equal(t, []float64{2, 2, 2, 4, 4}, filled.Column("B"))

	// original rows keep their gaps
	assert.True(t, math.IsNaN(table.Rows[1].Value("A")))
}

func TestFillGaps_DropsUndefinedInstrument(t *testing.T) {
	nan := math.NaN()
	table := &model.ResultTable{
		Instruments: []string{"A", "GONE"},
		Rows: []model.PeriodReturnRow{
			{Returns: map[string]float64{"A": 1, "GONE": nan}},
			{Returns: map[string]float64{"A": 2}},
		},
	}
	filled := FillGaps(table)
	assert.Equal(t, []string{"A"}, filled.Instruments)
	for _, r := range filled.Rows {
		_, ok := r.Returns["GONE"]
		assert.False(t, ok)
	}
}

func TestFillGaps_NoRows(t *testing.T) {
	filled := FillGaps(&model.ResultTable{Instruments: []string{"A"}})
	assert.True(t, filled.Empty())
	assert.Empty(t, filled.Instruments)
}
