package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"PeriodReturns/internal/notifier"
	"PeriodReturns/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// Sender delivers run results. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendDocument(ctx context.Context, path, caption string) error
}

// Scheduler re-runs the pipeline on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *pipeline.Runner
	Notifier Sender // nil disables delivery
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *pipeline.Runner, sender Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: sender,
		Ctx:      ctx,
	}
}

// Register adds the report task under the given cron spec (with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the report task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")
	res, err := s.Runner.Run(s.Ctx)
	switch {
	case errors.Is(err, pipeline.ErrNoData):
		log.Printf("[WARN] report task: %v", err)
		s.trySend(notifier.FormatReport(nil, 0))
		return
	case err != nil:
		log.Printf("[ERROR] report task: %v", err)
		s.trySend(notifier.FormatError(err))
		return
	}

	s.trySend(notifier.FormatReport(res.Report, notifier.DefaultRecentRows))
	for _, path := range res.Files {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".xlsx":
			s.trySendDocument(path, "run "+res.Report.RunID)
		}
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	name := ""
	if fields := strings.Fields(command); len(fields) > 0 {
		name = fields[0]
	}
	switch name {
	case "/report":
		s.reportTask()
		return ""
	case "/last":
		last := s.Runner.Last()
		if last == nil {
			return "No report computed yet. Send /report."
		}
		return notifier.FormatReport(last.Report, notifier.DefaultRecentRows)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func (s *Scheduler) trySendDocument(path, caption string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendDocument(s.Ctx, path, caption); err != nil {
		log.Printf("[ERROR] send document %s: %v", filepath.Base(path), err)
	}
}
