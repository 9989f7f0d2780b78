// Package pipeline wires one run end to end: fetch the price history,
// enumerate the calendar periods over its span, aggregate the return table
// and render it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"PeriodReturns/internal/calculator"
	"PeriodReturns/internal/calendar"
	"PeriodReturns/internal/collector"
	"PeriodReturns/internal/config"
	"PeriodReturns/internal/metrics"
	"PeriodReturns/internal/model"
	"PeriodReturns/internal/report"
	"PeriodReturns/internal/runlog"
)

// ErrNoData is returned when a run produces an empty table. Nothing is
// rendered in that case.
var ErrNoData = errors.New("no period returns to report")

// Output file names inside the output directory.
const (
	CSVFile      = "period_returns.csv"
	MarkdownFile = "period_returns.md"
	XLSXFile     = "period_returns.xlsx"
)

// Result is the outcome of a successful run.
type Result struct {
	Report *report.Report
	Files  []string
}

// Runner runs the pipeline. It is safe for concurrent use; runs are serialized.
type Runner struct {
	Collector *collector.Collector
	Start     model.Date
	End       model.Date // zero means today
	OutputDir string
	Formats   []string
	Now       func() time.Time
	Journal   *runlog.Journal // nil disables the run log

	runMu sync.Mutex

	mu   sync.RWMutex
	last *Result
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config, c *collector.Collector) (*Runner, error) {
	start, err := cfg.Start()
	if err != nil {
		return nil, fmt.Errorf("history start: %w", err)
	}
	end, err := cfg.End()
	if err != nil {
		return nil, fmt.Errorf("history end: %w", err)
	}
	return &Runner{
		Collector: c,
		Start:     start,
		End:       end,
		OutputDir: cfg.Output.Dir,
		Formats:   cfg.Output.Formats,
		Now:       time.Now,
	}, nil
}

// Last returns the most recent successful result, or nil.
func (r *Runner) Last() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Run executes one full pass and writes the configured outputs.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	began := time.Now()
	entry := runlog.Entry{RunID: uuid.NewString(), StartedAt: r.now(), Source: r.Collector.Fetcher.Name()}
	res, err := r.run(ctx, entry.RunID)
	elapsed := time.Since(began)
	metrics.RunDuration.Observe(elapsed.Seconds())
	entry.DurationMS = elapsed.Milliseconds()

	switch {
	case errors.Is(err, ErrNoData):
		entry.Status = runlog.StatusNoData
	case err != nil:
		entry.Status = runlog.StatusError
		entry.Error = err.Error()
	default:
		entry.Status = runlog.StatusOK
		rep := res.Report
		entry.SpanStart, entry.SpanEnd = rep.SpanStart.String(), rep.SpanEnd.String()
		entry.Periods = rep.Periods
		entry.Rows = len(rep.Table.Rows)
		entry.Instruments = rep.Table.Instruments
		entry.Files = res.Files
		r.mu.Lock()
		r.last = res
		r.mu.Unlock()
	}
	metrics.RunsTotal.WithLabelValues(entry.Status).Inc()
	if r.Journal != nil {
		r.Journal.Record(entry)
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, runID string) (*Result, error) {
	now := r.now()

	end := r.End
	if end.IsZero() {
		end = model.DateOf(now)
	}
	log.Printf("[INFO] run %s: %v from %s to %s", runID, r.Collector.Symbols, r.Start, end)

	series, err := r.Collector.Collect(ctx, r.Start.Time(), end.Time().Add(24*time.Hour-time.Second))
	if err != nil {
		return nil, fmt.Errorf("collect prices: %w", err)
	}
	spanStart, spanEnd, ok := series.Span()
	if !ok {
		return nil, ErrNoData
	}

	periods := calendar.Periods(spanStart, spanEnd)
	table := calculator.ComputeReturns(series, periods)

	rep := &report.Report{
		RunID:       runID,
		GeneratedAt: now,
		Source:      r.Collector.Fetcher.Name(),
		SpanStart:   spanStart,
		SpanEnd:     spanEnd,
		Periods:     len(periods),
		Table:       table,
		Summary:     calculator.Summarize(table),
	}
	metrics.PeriodsDropped.Add(float64(rep.Dropped()))
	metrics.TableRows.Set(float64(len(table.Rows)))
	metrics.TableInstruments.Set(float64(len(table.Instruments)))

	if table.Empty() {
		log.Printf("[WARN] run %s: %d periods over %s..%s, none resolved", runID, len(periods), spanStart, spanEnd)
		return nil, ErrNoData
	}
	log.Printf("[INFO] run %s: %d rows × %d instruments (%d periods dropped)",
		runID, len(table.Rows), len(table.Instruments), rep.Dropped())

	files, err := r.render(rep)
	if err != nil {
		return nil, err
	}
	return &Result{Report: rep, Files: files}, nil
}

func (r *Runner) render(rep *report.Report) ([]string, error) {
	if len(r.Formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var files []string
	for _, format := range r.Formats {
		var path string
		var err error
		switch format {
		case config.FormatCSV:
			path = filepath.Join(r.OutputDir, CSVFile)
			err = os.WriteFile(path, []byte(report.RenderCSV(rep.Table)), 0o644)
		case config.FormatMarkdown:
			path = filepath.Join(r.OutputDir, MarkdownFile)
			err = os.WriteFile(path, []byte(report.RenderMarkdown(rep)), 0o644)
		case config.FormatXLSX:
			path = filepath.Join(r.OutputDir, XLSXFile)
			err = report.WriteXLSX(path, rep)
		default:
			return files, fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return files, fmt.Errorf("write %s: %w", format, err)
		}
		log.Printf("[INFO] wrote %s", path)
		files = append(files, path)
	}
	return files, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
