package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/cuesheet/internal/show"
)

func TestOpen_CreatesDatabaseWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	ctx := context.Background()
	err = s.View(ctx, func(tx *Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		if p.ScriptID != show.DefaultScriptID {
			t.Errorf("ScriptID = %d, want %d", p.ScriptID, show.DefaultScriptID)
		}
		if p.IsSet() {
			t.Errorf("fresh database should have no current cue, got %d", *p.CurrentCueID)
		}

		name, err := tx.ScriptName(ctx, p.ScriptID)
		if err != nil {
			return err
		}
		if name != show.DefaultDisplayName {
			t.Errorf("ScriptName = %q, want %q", name, show.DefaultDisplayName)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	appendCues(t, s1, "Opening")
	s1.Close()

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM cues").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("cue count = %d, want 1", count)
	}

	for _, table := range []string{"scripts", "cues", "camera_assignments", "settings", "playback_state"} {
		var name string
		err := s2.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after reopen: %v", table, err)
		}
	}
}

func TestOpen_InitialPointerIsFirstCue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	ids := appendCues(t, s, "A", "B")
	// A database missing its playback row gets one pointing at the first cue.
	if _, err := s.db.Exec("DELETE FROM playback_state"); err != nil {
		t.Fatalf("delete playback row: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	err = s.View(ctx, func(tx *Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		if !p.IsSet() || *p.CurrentCueID != ids[0] {
			t.Errorf("pointer = %v, want first cue %d", p.CurrentCueID, ids[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	if _, err := Open("/nonexistent/dir/show.db"); err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPing(t *testing.T) {
	s := createTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
	if s.DB() == nil {
		t.Error("DB() returned nil")
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.want); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestSettings_StoreLevel(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Setting(ctx, "require_auth_operator"); err != nil || ok {
		t.Fatalf("Setting() on missing key = ok %v, err %v", ok, err)
	}

	if err := s.SetSetting(ctx, "require_auth_operator", "true"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}
	if err := s.SetSetting(ctx, "require_auth_operator", "false"); err != nil {
		t.Fatalf("SetSetting() overwrite failed: %v", err)
	}

	v, ok, err := s.Setting(ctx, "require_auth_operator")
	if err != nil || !ok {
		t.Fatalf("Setting() = ok %v, err %v", ok, err)
	}
	if v != "false" {
		t.Errorf("value = %q, want %q", v, "false")
	}
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	boom := show.Validation("boom")
	err := s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.InsertCue(ctx, show.DefaultScriptID, 1, show.CueContent{LineText: "ghost"}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("Update() error = %v, want %v", err, boom)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM cues").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("cue count after rollback = %d, want 0", count)
	}
}
