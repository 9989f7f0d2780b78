package recorder

import (
	"context"

	"PeriodReturns/internal/model"
)

// BarCache keeps downloaded daily bars per symbol so repeated runs only
// fetch the recent tail of the history.
type BarCache interface {
	// Coverage reports the first and last cached trading day of symbol.
	Coverage(ctx context.Context, symbol string) (first, last model.Date, ok bool, err error)
	// SaveBars upserts bars keyed by (symbol, trading day).
	SaveBars(ctx context.Context, symbol string, bars []model.OHLCV) error
	// LoadBars returns cached bars with from <= day <= to in ascending order.
	LoadBars(ctx context.Context, symbol string, from, to model.Date) ([]model.OHLCV, error)
	Close() error
}
