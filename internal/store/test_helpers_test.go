package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/cuesheet/internal/show"
)

// createTestStore creates a new store in a per-test temp directory.
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

// appendCues writes cues with the given texts at sequence 1..N of the
// default script and returns their ids.
func appendCues(t *testing.T, s *Store, texts ...string) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, 0, len(texts))
	err := s.Update(ctx, func(tx *Tx) error {
		for _, text := range texts {
			max, err := tx.MaxSeq(ctx, show.DefaultScriptID)
			if err != nil {
				return err
			}
			id, err := tx.InsertCue(ctx, show.DefaultScriptID, max+1, show.CueContent{LineText: text})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("appendCues failed: %v", err)
	}
	return ids
}
