package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// History is the persisted run journal.
type History struct {
	Runs      []Entry   `json:"runs"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadHistory reads the journal from a JSON file. Returns an empty history if the file doesn't exist.
func LoadHistory(filePath string) (*History, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &History{}, nil
		}
		return nil, err
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode run log %s: %w", filePath, err)
	}
	return &h, nil
}

// SaveHistory writes the journal through a temp file and rename, so a crash
// never leaves a truncated file behind.
func SaveHistory(filePath string, h *History) error {
	h.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
