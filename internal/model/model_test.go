package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_CompareAndFormat(t *testing.T) {
	a := NewDate(2024, time.February, 26)
	b := NewDate(2024, time.April, 19)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, "2024-02-26", a.String())
	assert.Equal(t, time.Monday, a.Weekday())
	assert.Equal(t, "2024-03-01", a.AddDays(4).String(), "leap year February")

	p, err := ParseDate("2024-04-19")
	require.NoError(t, err)
	assert.Equal(t, b, p)

	_, err = ParseDate("19/04/2024")
	assert.Error(t, err)
}

func TestDateOf_KeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	ts := time.Date(2024, time.February, 26, 23, 30, 0, 0, loc)
	assert.Equal(t, NewDate(2024, time.February, 26), DateOf(ts))
}

func TestNewPriceSeries_Validation(t *testing.T) {
	dates := []Date{NewDate(2024, 1, 2), NewDate(2024, 1, 3)}

	_, err := NewPriceSeries(dates, nil)
	assert.ErrorIs(t, err, ErrNoInstruments)

	_, err = NewPriceSeries(dates, map[string][]float64{"X": {1}})
	assert.ErrorIs(t, err, ErrColumnLength)

	_, err = NewPriceSeries([]Date{dates[1], dates[0]}, map[string][]float64{"X": {1, 2}})
	assert.ErrorIs(t, err, ErrUnsortedIndex)

	s, err := NewPriceSeries(dates, map[string][]float64{"Y": {1, 2}, "X": {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, s.Instruments)
	assert.Equal(t, 4.0, s.PriceAt("X", dates[1]))
	assert.True(t, math.IsNaN(s.PriceAt("X", NewDate(2024, 1, 4))))
	assert.True(t, math.IsNaN(s.PriceAt("Z", dates[0])))
}

func TestSeriesFromBars_UnionIndex(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 14, 0, 0, 0, time.UTC) }
	bars := map[string][]OHLCV{
		"GGAL": {
			{Time: day(4), Close: 20, AdjClose: 19.5},
			{Time: day(5), Close: 21},
		},
		"GGAL.BA": {
			{Time: day(4), Close: 3000},
			{Time: day(6), Close: 3100},
			{Time: day(7), Close: 0}, // null bar
		},
	}

	s, err := SeriesFromBars(bars)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"GGAL", "GGAL.BA"}, s.Instruments)

	assert.Equal(t, 19.5, s.Prices["GGAL"][0], "adjusted close preferred")
	assert.Equal(t, 21.0, s.Prices["GGAL"][1])
	assert.True(t, math.IsNaN(s.Prices["GGAL"][2]))
	assert.True(t, math.IsNaN(s.Prices["GGAL.BA"][1]))

	first, last, ok := s.Span()
	require.True(t, ok)
	assert.Equal(t, "2024-03-04", first.String())
	assert.Equal(t, "2024-03-06", last.String())
}

func TestResultTable_Empty(t *testing.T) {
	var nilTable *ResultTable
	assert.True(t, nilTable.Empty())
	assert.True(t, (&ResultTable{Instruments: []string{"X"}}).Empty())

	table := &ResultTable{
		Instruments: []string{"X"},
		Rows:        []PeriodReturnRow{{Returns: map[string]float64{"X": 1.5}}},
	}
	assert.False(t, table.Empty())
	assert.Equal(t, []float64{1.5}, table.Column("X"))
}
