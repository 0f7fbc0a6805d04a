package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/mergers/internal/merger"
	"github.com/roach88/mergers/internal/object"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPublication creates a counter publication with minimal fields.
func createTestPublication(id string, seq int64, subSpec uint32, value int64) merger.Publication {
	return merger.Publication{
		ID:               id,
		Seq:              seq,
		SubSpec:          subSpec,
		Detector:         "TST",
		Object:           object.Single{Object: object.NewCounter("cnt", value)},
		Producers:        2,
		ObjectsMerged:    2,
		UpdatesReceived:  3,
		CyclesSinceReset: 1,
	}
}
