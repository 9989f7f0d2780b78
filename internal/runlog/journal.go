// Package runlog keeps a bounded JSON journal of pipeline runs on disk.
package runlog

import (
	"log"
	"sync"
	"time"
)

// Run outcomes.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusError  = "error"
)

// Entry describes one pipeline run.
type Entry struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Source      string    `json:"source,omitempty"`
	SpanStart   string    `json:"span_start,omitempty"`
	SpanEnd     string    `json:"span_end,omitempty"`
	Periods     int       `json:"periods"`
	Rows        int       `json:"rows"`
	Instruments []string  `json:"instruments,omitempty"`
	Files       []string  `json:"files,omitempty"`
}

// DefaultLimit is how many runs are kept when no limit is given.
const DefaultLimit = 100

// Journal records runs with concurrency safety. An empty file path keeps the
// journal in memory only.
type Journal struct {
	mu       sync.Mutex
	history  *History
	filePath string
	limit    int
}

// NewJournal creates a Journal, loading existing entries from disk.
func NewJournal(filePath string, limit int) (*Journal, error) {
	h := &History{}
	if filePath != "" {
		var err error
		if h, err = LoadHistory(filePath); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Journal{history: h, filePath: filePath, limit: limit}, nil
}

// Record appends an entry, trimming the oldest beyond the limit.
func (j *Journal) Record(e Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.history.Runs = append(j.history.Runs, e)
	if n := len(j.history.Runs); n > j.limit {
		j.history.Runs = append([]Entry(nil), j.history.Runs[n-j.limit:]...)
	}
	if err := j.save(); err != nil {
		log.Printf("[ERROR] failed to save run log: %v", err)
	}
}

// Entries returns the recorded runs, newest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, len(j.history.Runs))
	for i, e := range j.history.Runs {
		out[len(out)-1-i] = e
	}
	return out
}

// Last returns the newest entry.
func (j *Journal) Last() (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.history.Runs) == 0 {
		return Entry{}, false
	}
	return j.history.Runs[len(j.history.Runs)-1], true
}

func (j *Journal) save() error {
	if j.filePath == "" {
		return nil
	}
	return SaveHistory(j.filePath, j.history)
}
