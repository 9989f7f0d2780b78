// Package server exposes the latest period return table over HTTP together
// with health and Prometheus endpoints.
package server

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"PeriodReturns/internal/metrics"
	"PeriodReturns/internal/pipeline"
	"PeriodReturns/internal/report"
	"PeriodReturns/internal/runlog"
)

// Runner is the part of *pipeline.Runner the server needs.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
	Last() *pipeline.Result
}

// Server serves the HTTP API.
type Server struct {
	Runner  Runner
	Journal *runlog.Journal // optional
	http    *http.Server
}

// New builds a server listening on addr.
func New(addr string, runner Runner, journal *runlog.Journal) *Server {
	s := &Server{Runner: runner, Journal: journal}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/returns", s.getReturns)
		r.Get("/returns.csv", s.getReturnsCSV)
		r.Get("/runs", s.getRuns)
		r.Post("/runs", s.postRun)
	})
	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("[INFO] HTTP server shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) getReturns(w http.ResponseWriter, r *http.Request) {
	last := s.Runner.Last()
	if last == nil {
		writeError(w, r, http.StatusNotFound, "no report computed yet")
		return
	}
	render.JSON(w, r, newReturnsResponse(last.Report))
}

func (s *Server) getReturnsCSV(w http.ResponseWriter, r *http.Request) {
	last := s.Runner.Last()
	if last == nil {
		writeError(w, r, http.StatusNotFound, "no report computed yet")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := report.WriteCSV(w, last.Report.Table); err != nil {
		log.Printf("[ERROR] write csv response: %v", err)
	}
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	entries := []runlog.Entry{}
	if s.Journal != nil {
		entries = s.Journal.Entries()
	}
	render.JSON(w, r, map[string]any{"runs": entries})
}

func (s *Server) postRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.Runner.Run(r.Context())
	switch {
	case errors.Is(err, pipeline.ErrNoData):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Printf("[ERROR] run via API: %v", err)
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newReturnsResponse(res.Report))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

type returnsResponse struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	SpanStart   string            `json:"span_start"`
	SpanEnd     string            `json:"span_end"`
	Periods     int               `json:"periods"`
	Dropped     int               `json:"dropped"`
	Instruments []string          `json:"instruments"`
	Rows        []rowResponse     `json:"rows"`
	Summary     []summaryResponse `json:"summary"`
}

type rowResponse struct {
	Period        string              `json:"period"`
	Start         string              `json:"start"`
	End           string              `json:"end"`
	CalendarStart string              `json:"calendar_start"`
	CalendarEnd   string              `json:"calendar_end"`
	Returns       map[string]*float64 `json:"returns"`
}

type summaryResponse struct {
	Instrument   string   `json:"instrument"`
	Periods      int      `json:"periods"`
	Mean         *float64 `json:"mean"`
	StdDev       *float64 `json:"std_dev"`
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	PositiveRate float64  `json:"positive_rate"`
}

func newReturnsResponse(rep *report.Report) returnsResponse {
	resp := returnsResponse{
		RunID:       rep.RunID,
		GeneratedAt: rep.GeneratedAt,
		Source:      rep.Source,
		SpanStart:   rep.SpanStart.String(),
		SpanEnd:     rep.SpanEnd.String(),
		Periods:     rep.Periods,
		Dropped:     rep.Dropped(),
		Instruments: rep.Table.Instruments,
		Rows:        make([]rowResponse, 0, len(rep.Table.Rows)),
		Summary:     make([]summaryResponse, 0, len(rep.Summary)),
	}
	for _, row := range rep.Table.Rows {
		rr := rowResponse{
			Period:        row.Label(),
			Start:         row.Period.Start.String(),
			End:           row.Period.End.String(),
			CalendarStart: row.Period.Calendar.Start.String(),
			CalendarEnd:   row.Period.Calendar.End.String(),
			Returns:       make(map[string]*float64, len(rep.Table.Instruments)),
		}
		for _, id := range rep.Table.Instruments {
			rr.Returns[id] = nullable(row.Value(id))
		}
		resp.Rows = append(resp.Rows, rr)
	}
	for _, s := range rep.Summary {
		resp.Summary = append(resp.Summary, summaryResponse{
			Instrument:   s.Instrument,
			Periods:      s.Periods,
			Mean:         nullable(s.Mean),
			StdDev:       nullable(s.StdDev),
			Min:          nullable(s.Min),
			Max:          nullable(s.Max),
			PositiveRate: s.PositiveRate,
		})
	}
	return resp
}

// nullable maps NaN and ±Inf to JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
