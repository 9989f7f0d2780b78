package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PeriodReturns/internal/model"
)

func TestSQLiteCache_SaveLoadCoverage(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, _, ok, err := c.Coverage(ctx, "GGAL")
	require.NoError(t, err)
	assert.False(t, ok)

	art := time.FixedZone("ART", -3*3600)
	bars := []model.OHLCV{
		{Time: time.Date(2024, 3, 4, 17, 0, 0, 0, art), Open: 1, High: 2, Low: 1, Close: 1.5, AdjClose: 1.4, Volume: 10},
		{Time: time.Date(2024, 3, 5, 17, 0, 0, 0, art), Open: 1, High: 2, Low: 1, Close: 1.6, Volume: 11},
		{Time: time.Date(2024, 3, 6, 17, 0, 0, 0, art), Open: 1, High: 2, Low: 1, Close: 1.7, Volume: 12},
	}
	require.NoError(t, c.SaveBars(ctx, "GGAL", bars))

	first, last, ok, err := c.Coverage(ctx, "GGAL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-03-04", first.String())
	assert.Equal(t, "2024-03-06", last.String())

	got, err := c.LoadBars(ctx, "GGAL", model.NewDate(2024, 3, 5), model.NewDate(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-05", model.DateOf(got[0].Time).String())
	assert.Equal(t, 1.6, got[0].Price())

	// upsert replaces the stored values
	require.NoError(t, c.SaveBars(ctx, "GGAL", []model.OHLCV{
		{Time: time.Date(2024, 3, 5, 17, 0, 0, 0, art), Close: 1.65, AdjClose: 1.6},
	}))
	got, err = c.LoadBars(ctx, "GGAL", model.NewDate(2024, 3, 5), model.NewDate(2024, 3, 5))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.6, got[0].Price())

	other, err := c.LoadBars(ctx, "GGAL.BA", model.NewDate(2024, 1, 1), model.NewDate(2024, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestNoopCache(t *testing.T) {
	var c BarCache = NewNoopCache()
	ctx := context.Background()
	require.NoError(t, c.SaveBars(ctx, "X", []model.OHLCV{{Close: 1}}))
	_, _, ok, err := c.Coverage(ctx, "X")
	require.NoError(t, err)
	assert.False(t, ok)
	bars, err := c.LoadBars(ctx, "X", model.NewDate(2024, 1, 1), model.NewDate(2024, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.NoError(t, c.Close())
}
