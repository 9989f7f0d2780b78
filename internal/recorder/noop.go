package recorder

import (
	"context"

	"PeriodReturns/internal/model"
)

// NoopCache is used when SQLite is not configured: nothing is cached.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Coverage(context.Context, string) (model.Date, model.Date, bool, error) {
	return model.Date{}, model.Date{}, false, nil
}
func (n *NoopCache) SaveBars(context.Context, string, []model.OHLCV) error { return nil }
func (n *NoopCache) LoadBars(context.Context, string, model.Date, model.Date) ([]model.OHLCV, error) {
	return nil, nil
}
func (n *NoopCache) Close() error { return nil }
