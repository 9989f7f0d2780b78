// Package metrics provides Prometheus instrumentation for period return runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RunsTotal counts pipeline runs by outcome ("ok", "no_data", "error").
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "periodreturns_runs_total",
		Help: "Total number of pipeline runs",
	}, []string{"status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "periodreturns_run_duration_seconds",
		Help:    "Pipeline run duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// FetchTotal counts price history fetches by source, symbol and status.
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "periodreturns_fetch_total",
		Help: "Total price history fetches",
	}, []string{"source", "symbol", "status"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "periodreturns_fetch_duration_seconds",
		Help:    "Price history fetch duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// CacheBarsServed counts bars served from the local bar cache instead of the data source.
	CacheBarsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "periodreturns_cache_bars_served_total",
		Help: "Bars served from the local cache",
	}, []string{"symbol"})

	// PeriodsDropped counts calendar periods without a trading date on either bound.
	PeriodsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "periodreturns_periods_dropped_total",
		Help: "Calendar periods dropped because they could not be resolved onto trading dates",
	})

	TableRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "periodreturns_table_rows",
		Help: "Rows in the most recent result table",
	})

	TableInstruments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "periodreturns_table_instruments",
		Help: "Instrument columns in the most recent result table",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "periodreturns_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "periodreturns_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one fetch attempt.
func ObserveFetch(source, symbol string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	FetchTotal.WithLabelValues(source, symbol, status).Inc()
	FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
