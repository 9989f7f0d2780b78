package collector

import (
	"context"
	"time"

	"PeriodReturns/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
// Returned bars are sorted by time; Time carries the exchange's location so
// model.DateOf yields the local trading day.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
