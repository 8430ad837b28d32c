package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/store"
)

// NewStore opens a fresh store in a per-test temp directory and closes it
// when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cuesheet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
