package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"
)

// OHLCV represents a single daily bar as delivered by a data source.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64 // 0 when the source has no adjusted series
	Volume   float64
}

// Price returns the adjusted close when available, the raw close otherwise.
func (b OHLCV) Price() float64 {
	if b.AdjClose > 0 {
		return b.AdjClose
	}
	return b.Close
}

var (
	ErrNoInstruments     = errors.New("price series has no instruments")
	ErrColumnLength      = errors.New("price column length does not match date index")
	ErrUnsortedIndex     = errors.New("price series dates must be unique and ascending")
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// PriceSeries is a trading-date index with one price column per instrument.
// A NaN cell means the instrument has no recorded price on that date, which
// happens when instruments trade on different exchange calendars.
type PriceSeries struct {
	Dates       []Date
	Instruments []string
	Prices      map[string][]float64
}

// NewPriceSeries validates that dates are strictly ascending, every column
// matches the index length, and at least one instrument exists.
func NewPriceSeries(dates []Date, prices map[string][]float64) (*PriceSeries, error) {
	if len(prices) == 0 {
		return nil, ErrNoInstruments
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			return nil, fmt.Errorf("%w: %s then %s", ErrUnsortedIndex, dates[i-1], dates[i])
		}
	}
	instruments := make([]string, 0, len(prices))
	for id, col := range prices {
		if len(col) != len(dates) {
			return nil, fmt.Errorf("%w: %s has %d values for %d dates", ErrColumnLength, id, len(col), len(dates))
		}
		instruments = append(instruments, id)
	}
	sort.Strings(instruments)
	return &PriceSeries{Dates: dates, Instruments: instruments, Prices: prices}, nil
}

// SeriesFromBars merges per-instrument bars into one series on the union of
// their trading dates.
func SeriesFromBars(bars map[string][]OHLCV) (*PriceSeries, error) {
	byDate := make(map[Date]map[string]float64)
	for id, bs := range bars {
		for _, b := range bs {
			p := b.Price()
			if p <= 0 || math.IsNaN(p) {
				continue
			}
			d := DateOf(b.Time)
			row, ok := byDate[d]
			if !ok {
				row = make(map[string]float64)
				byDate[d] = row
			}
			row[id] = p
		}
	}

	dates := make([]Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, Date.Compare)

	prices := make(map[string][]float64, len(bars))
	for id := range bars {
		col := make([]float64, len(dates))
		for i, d := range dates {
			if v, ok := byDate[d][id]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		prices[id] = col
	}
	return NewPriceSeries(dates, prices)
}

func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

// Span returns the first and last trading date. ok is false for an empty series.
func (s *PriceSeries) Span() (first, last Date, ok bool) {
	if s.Len() == 0 {
		return Date{}, Date{}, false
	}
	return s.Dates[0], s.Dates[len(s.Dates)-1], true
}

// IndexOf returns the position of d in the index.
func (s *PriceSeries) IndexOf(d Date) (int, bool) {
	i, found := slices.BinarySearchFunc(s.Dates, d, Date.Compare)
	return i, found
}

// PriceAt returns NaN when the date is not indexed or the instrument has no
// price on it.
func (s *PriceSeries) PriceAt(instrument string, d Date) float64 {
	col, ok := s.Prices[instrument]
	if !ok {
		return math.NaN()
	}
	i, found := s.IndexOf(d)
	if !found {
		return math.NaN()
	}
	return col[i]
}
