package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"PeriodReturns/internal/metrics"
	"PeriodReturns/internal/model"
	"PeriodReturns/internal/recorder"
)

// ErrNoData is returned by fetchers when the source has no bars for a symbol.
var ErrNoData = errors.New("no data returned")

// refreshDays is how far before the last cached day the tail is re-downloaded,
// picking up late corrections from the source.
const refreshDays = 7

// priceTolerance is the relative difference above which a refetched price no
// longer matches its cached value.
const priceTolerance = 1e-6

// mockEpoch anchors generated mock prices so every date always gets the same price.
var mockEpoch = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars  map[string][]model.OHLCV
	Price float64 // used to generate weekday bars for symbols missing from Bars
	Err   error

	mu    sync.Mutex
	Calls []MockCall
}

// MockCall records one FetchDailyBars invocation.
type MockCall struct {
	Symbol     string
	Start, End time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Symbol: symbol, Start: start, End: end})
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		var out []model.OHLCV
		for _, b := range bars {
			if !b.Time.Before(start) && !b.Time.After(end) {
				out = append(out, b)
			}
		}
		return out, nil
	}
	return generateMockBars(m.Price, start, end), nil
}

func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	for d := model.DateOf(start); !d.Time().After(end); d = d.AddDays(1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days := int(d.Time().Sub(mockEpoch).Hours() / 24)
		p := basePrice * (1 + float64(days%1000)*0.001)
		bars = append(bars, model.OHLCV{
			Time:   d.Time(),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
	}
	return bars
}

// Collector fetches the price history of several symbols and merges it into
// one PriceSeries.
type Collector struct {
	Fetcher     Fetcher
	Cache       recorder.BarCache
	Symbols     []string
	Concurrency int
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, cache recorder.BarCache, symbols []string) *Collector {
	if cache == nil {
		cache = recorder.NewNoopCache()
	}
	return &Collector{Fetcher: fetcher, Cache: cache, Symbols: symbols, Concurrency: 4}
}

// Collect fetches daily bars for every symbol between start and end and
// returns them on the union of their trading dates. Any fetch failure aborts
// the collection.
func (c *Collector) Collect(ctx context.Context, start, end time.Time) (*model.PriceSeries, error) {
	if len(c.Symbols) == 0 {
		return nil, model.ErrNoInstruments
	}

	var mu sync.Mutex
	bars := make(map[string][]model.OHLCV, len(c.Symbols))

	g, gctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for _, symbol := range c.Symbols {
		g.Go(func() error {
			bs, err := c.collectSymbol(gctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("collect %s: %w", symbol, err)
			}
			mu.Lock()
			bars[symbol] = bs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series, err := model.SeriesFromBars(bars)
	if err != nil {
		return nil, fmt.Errorf("build price series: %w", err)
	}
	log.Printf("[INFO] collected %d trading dates for %v from %s", series.Len(), series.Instruments, c.Fetcher.Name())
	return series, nil
}

func (c *Collector) collectSymbol(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	startDay, endDay := model.DateOf(start), model.DateOf(end)

	first, last, ok, err := c.Cache.Coverage(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] bar cache coverage %s: %v, fetching full history", symbol, err)
		return c.fetchAndStore(ctx, symbol, start, end)
	}
	// The first trading day may fall a few days after a weekend or holiday start.
	if !ok || first.After(startDay.AddDays(refreshDays)) || !last.After(startDay) {
		return c.fetchAndStore(ctx, symbol, start, end)
	}

	tail := last.AddDays(-refreshDays)
	loadTo := last
	if endDay.Before(loadTo) {
		loadTo = endDay
	}
	cached, err := c.Cache.LoadBars(ctx, symbol, startDay, loadTo)
	if err != nil {
		log.Printf("[WARN] bar cache load %s: %v, fetching full history", symbol, err)
		return c.fetchAndStore(ctx, symbol, start, end)
	}

	// The whole request lies before the refreshed tail.
	if tail.After(endDay) {
		metrics.CacheBarsServed.WithLabelValues(symbol).Add(float64(len(cached)))
		return cached, nil
	}

	head, overlap := splitBars(cached, tail)
	began := time.Now()
	fetched, err := c.Fetcher.FetchDailyBars(ctx, symbol, tail.Time(), end)
	metrics.ObserveFetch(c.Fetcher.Name(), symbol, began, err)
	if err != nil {
		if errors.Is(err, ErrNoData) && len(cached) > 0 {
			log.Printf("[WARN] %s returned no new bars for %s, using cache only", c.Fetcher.Name(), symbol)
			return cached, nil
		}
		return nil, err
	}

	// A dividend or split rescales every earlier adjusted close.
	if rebased(overlap, fetched) {
		log.Printf("[WARN] adjusted closes of %s changed since they were cached, refetching full history", symbol)
		return c.fetchAndStore(ctx, symbol, start, end)
	}

	if err := c.Cache.SaveBars(ctx, symbol, fetched); err != nil {
		log.Printf("[WARN] bar cache save %s: %v", symbol, err)
	}
	metrics.CacheBarsServed.WithLabelValues(symbol).Add(float64(len(head)))
	return append(head, fetched...), nil
}

func (c *Collector) fetchAndStore(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	began := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
	metrics.ObserveFetch(c.Fetcher.Name(), symbol, began, err)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.SaveBars(ctx, symbol, bars); err != nil {
		log.Printf("[WARN] bar cache save %s: %v", symbol, err)
	}
	return bars, nil
}

// splitBars splits date-ordered bars into those before d and those on or after it.
func splitBars(bars []model.OHLCV, d model.Date) (before, from []model.OHLCV) {
	i := sort.Search(len(bars), func(i int) bool { return !model.DateOf(bars[i].Time).Before(d) })
	return bars[:i:i], bars[i:]
}

// rebased reports whether any refetched bar prices a cached day differently.
func rebased(cached, fetched []model.OHLCV) bool {
	prices := make(map[model.Date]float64, len(cached))
	for _, b := range cached {
		prices[model.DateOf(b.Time)] = b.Price()
	}
	for _, b := range fetched {
		old, ok := prices[model.DateOf(b.Time)]
		if !ok {
			continue
		}
		if p := b.Price(); math.Abs(p-old) > priceTolerance*math.Max(math.Abs(p), math.Abs(old)) {
			return true
		}
	}
	return false
}
