package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PeriodReturns/internal/collector"
	"PeriodReturns/internal/config"
	"PeriodReturns/internal/model"
	"PeriodReturns/internal/runlog"
)

func newRunner(t *testing.T, fetcher collector.Fetcher, start, end model.Date) *Runner {
	t.Helper()
	return &Runner{
		Collector: collector.NewCollector(fetcher, nil, []string{"GGAL", "GGAL.BA"}),
		Start:     start,
		End:       end,
		OutputDir: t.TempDir(),
		Formats:   []string{config.FormatCSV, config.FormatMarkdown, config.FormatXLSX},
		Now:       func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRun_WritesOutputs(t *testing.T) {
	r := newRunner(t, &collector.MockFetcher{Price: 100}, model.NewDate(2024, 1, 1), model.NewDate(2024, 6, 30))

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	rep := res.Report
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "mock", rep.Source)
	assert.Equal(t, "2024-01-01", rep.SpanStart.String())
	assert.Equal(t, "2024-06-28", rep.SpanEnd.String())
	assert.Equal(t, 3, rep.Periods)
	assert.Equal(t, 0, rep.Dropped())
	require.Len(t, rep.Table.Rows, 3)
	assert.Equal(t, "2024-02-26 to 2024-04-19", rep.Table.Rows[0].Label())
	assert.Equal(t, "2024-06-24 to 2024-06-28", rep.Table.Rows[2].Label())
	assert.Len(t, rep.Summary, 2)

	require.Len(t, res.Files, 3)
	for _, f := range res.Files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Equal(t, filepath.Join(r.OutputDir, CSVFile), res.Files[0])
	assert.Same(t, res, r.Last())
}

func TestRun_EmptyTableIsNoData(t *testing.T) {
	r := newRunner(t, &collector.MockFetcher{Price: 100}, model.NewDate(2024, 1, 1), model.NewDate(2024, 1, 20))

	res, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, res)
	assert.Nil(t, r.Last())

	entries, err := os.ReadDir(r.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_FetchErrorKeepsLastResult(t *testing.T) {
	fetcher := &collector.MockFetcher{Price: 100}
	r := newRunner(t, fetcher, model.NewDate(2024, 1, 1), model.NewDate(2024, 6, 30))

	first, err := r.Run(context.Background())
	require.NoError(t, err)

	fetcher.Err = errors.New("timeout")
	_, err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collect prices")
	assert.Same(t, first, r.Last())
}

func TestRun_DefaultsEndToNow(t *testing.T) {
	fetcher := &collector.MockFetcher{Price: 100}
	r := newRunner(t, fetcher, model.NewDate(2024, 1, 1), model.Date{})
	r.Formats = nil

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	require.NotEmpty(t, fetcher.Calls)
	assert.Equal(t, "2024-07-01", model.DateOf(fetcher.Calls[0].End).String())
}

func TestNewRunner(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	cfg.HistoryEnd = "2020-12-31"

	r, err := NewRunner(cfg, collector.NewCollector(&collector.MockFetcher{Price: 1}, nil, cfg.Symbols))
	require.NoError(t, err)
	assert.Equal(t, "2010-01-01", r.Start.String())
	assert.Equal(t, "2020-12-31", r.End.String())
	assert.Equal(t, cfg.Output.Formats, r.Formats)
}

func TestRun_RecordsJournal(t *testing.T) {
	fetcher := &collector.MockFetcher{Price: 100}
	r := newRunner(t, fetcher, model.NewDate(2024, 1, 1), model.NewDate(2024, 6, 30))
	journal, err := runlog.NewJournal(filepath.Join(t.TempDir(), "runs.json"), 0)
	require.NoError(t, err)
	r.Journal = journal

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	fetcher.Err = errors.New("timeout")
	_, err = r.Run(context.Background())
	require.Error(t, err)

	entries := journal.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, runlog.StatusError, entries[0].Status)
	assert.Contains(t, entries[0].Error, "timeout")

	ok := entries[1]
	assert.Equal(t, runlog.StatusOK, ok.Status)
	assert.Equal(t, res.Report.RunID, ok.RunID)
	assert.Equal(t, "mock", ok.Source)
	assert.Equal(t, "2024-01-01", ok.SpanStart)
	assert.Equal(t, 3, ok.Periods)
	assert.Equal(t, 3, ok.Rows)
	assert.Equal(t, []string{"GGAL", "GGAL.BA"}, ok.Instruments)
	assert.Len(t, ok.Files, 3)
}
