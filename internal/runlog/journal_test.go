package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.json")

	j, err := NewJournal(path, 0)
	require.NoError(t, err)
	_, ok := j.Last()
	assert.False(t, ok)

	started := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	j.Record(Entry{RunID: "a", StartedAt: started, Status: StatusOK, Rows: 3, Instruments: []string{"GGAL"}})
	j.Record(Entry{RunID: "b", StartedAt: started.Add(time.Hour), Status: StatusError, Error: "timeout"})

	reloaded, err := NewJournal(path, 0)
	require.NoError(t, err)
	entries := reloaded.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].RunID)
	assert.Equal(t, "timeout", entries[0].Error)
	assert.Equal(t, "a", entries[1].RunID)
	assert.True(t, started.Equal(entries[1].StartedAt))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestJournal_TrimsToLimit(t *testing.T) {
	j, err := NewJournal("", 2)
	require.NoError(t, err)
	for _, id := range []string{"1", "2", "3"} {
		j.Record(Entry{RunID: id, Status: StatusOK})
	}
	entries := j.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "3", entries[0].RunID)
	assert.Equal(t, "2", entries[1].RunID)

	last, ok := j.Last()
	require.True(t, ok)
	assert.Equal(t, "3", last.RunID)
}

func TestLoadHistory_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewJournal(path, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode run log")
}
