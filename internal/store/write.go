package store

import (
	"context"
	"fmt"

	"github.com/roach88/cuesheet/internal/show"
)

// SetCurrentCue points playback at cueID, or clears the pointer when cueID
// is nil. Only the playback package calls this.
func (t *Tx) SetCurrentCue(ctx context.Context, scriptID int64, cueID *int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO playback_state (id, script_id, current_cue_id) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			script_id = excluded.script_id,
			current_cue_id = excluded.current_cue_id
	`, scriptID, cueID)
	if err != nil {
		return fmt.Errorf("write playback state: %w", err)
	}
	return nil
}

// ShiftCues adds delta to the sequence number of every cue in the script
// whose sequence number is >= fromSeq. Only the sequencer calls this.
func (t *Tx) ShiftCues(ctx context.Context, scriptID int64, fromSeq, delta int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE cues SET sequence_number = sequence_number + ?
		WHERE script_id = ? AND sequence_number >= ?
	`, delta, scriptID, fromSeq)
	if err != nil {
		return fmt.Errorf("shift cues: %w", err)
	}
	return nil
}

// InsertCue writes a cue row at seq and returns its id. The caller is
// responsible for having made room at seq.
func (t *Tx) InsertCue(ctx context.Context, scriptID int64, seq int, content show.CueContent) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO cues (script_id, sequence_number, line_text, notes)
		VALUES (?, ?, ?, ?)
	`, scriptID, seq, content.LineText, content.Notes)
	if err != nil {
		return 0, fmt.Errorf("write cue: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write cue: last insert id: %w", err)
	}
	return id, nil
}

// DeleteCue removes the cue row. Its assignments go with it (ON DELETE
// CASCADE). The gap it leaves is closed by the caller.
func (t *Tx) DeleteCue(ctx context.Context, cueID int64) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM cues WHERE id = ?`, cueID)
	if err != nil {
		return fmt.Errorf("delete cue: %w", err)
	}
	return requireRow(result, "cue %d not found", cueID)
}

// UpdateCue replaces a cue's text and notes.
func (t *Tx) UpdateCue(ctx context.Context, cueID int64, content show.CueContent) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE cues SET line_text = ?, notes = ? WHERE id = ?
	`, content.LineText, content.Notes, cueID)
	if err != nil {
		return fmt.Errorf("update cue: %w", err)
	}
	return requireRow(result, "cue %d not found", cueID)
}

// UpsertAssignment writes the shot for (cueID, camera). An existing row
// keeps its identity and expected_take flag.
func (t *Tx) UpsertAssignment(ctx context.Context, cueID int64, camera int, shot show.Shot) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO camera_assignments
		(cue_id, camera_number, subject, shot_type, notes, expected_take)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(cue_id, camera_number) DO UPDATE SET
			subject = excluded.subject,
			shot_type = excluded.shot_type,
			notes = excluded.notes
	`, cueID, camera, shot.Subject, shot.ShotType, shot.Notes)
	if err != nil {
		return fmt.Errorf("write assignment: %w", err)
	}
	return nil
}

// InsertAssignment writes a complete assignment row including the
// expected_take flag. Used by bulk import on a freshly emptied script.
func (t *Tx) InsertAssignment(ctx context.Context, a show.CameraAssignment) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO camera_assignments
		(cue_id, camera_number, subject, shot_type, notes, expected_take)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.CueID, a.CameraNumber, a.Subject, a.ShotType, a.Notes, a.ExpectedTake)
	if err != nil {
		return fmt.Errorf("write assignment: %w", err)
	}
	return nil
}

// DeleteAssignment removes the assignment for (cueID, camera).
func (t *Tx) DeleteAssignment(ctx context.Context, cueID int64, camera int) error {
	result, err := t.tx.ExecContext(ctx, `
		DELETE FROM camera_assignments WHERE cue_id = ? AND camera_number = ?
	`, cueID, camera)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireRow(result, "camera %d has no assignment at cue %d", camera, cueID)
}

// ToggleExpectedTake flips the expected_take flag and returns the new value.
func (t *Tx) ToggleExpectedTake(ctx context.Context, cueID int64, camera int) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE camera_assignments
		SET expected_take = CASE WHEN expected_take = 0 THEN 1 ELSE 0 END
		WHERE cue_id = ? AND camera_number = ?
	`, cueID, camera)
	if err != nil {
		return false, fmt.Errorf("toggle expected take: %w", err)
	}
	if err := requireRow(result, "camera %d has no assignment at cue %d", camera, cueID); err != nil {
		return false, err
	}

	a, err := t.Assignment(ctx, cueID, camera)
	if err != nil {
		return false, err
	}
	return a.ExpectedTake, nil
}

// SetSetting stores value under key, replacing any previous value.
func (t *Tx) SetSetting(ctx context.Context, key, value string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// DeleteScriptCues removes every cue (and assignment) of the script.
// Sequence numbers restart at 1 for whatever the caller inserts next.
func (t *Tx) DeleteScriptCues(ctx context.Context, scriptID int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM cues WHERE script_id = ?`, scriptID); err != nil {
		return fmt.Errorf("delete script cues: %w", err)
	}
	return nil
}

// Wipe deletes all scripts, cues, assignments and the playback row, then
// re-seeds the defaults. Settings survive.
func (t *Tx) Wipe(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM playback_state`,
		`DELETE FROM camera_assignments`,
		`DELETE FROM cues`,
		`DELETE FROM scripts`,
	} {
		if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
	}
	return t.EnsureDefaults(ctx)
}

// EnsureDefaults creates the default script, the playback row (pointing at
// the first cue if there is one) and the script_name setting. Existing rows
// are left alone.
func (t *Tx) EnsureDefaults(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO scripts (id, name) VALUES (?, 'Default Script')
	`, show.DefaultScriptID)
	if err != nil {
		return fmt.Errorf("seed script: %w", err)
	}

	first, ok, err := t.FirstCue(ctx, show.DefaultScriptID)
	if err != nil {
		return err
	}
	var firstID *int64
	if ok {
		firstID = &first.ID
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO playback_state (id, script_id, current_cue_id) VALUES (1, ?, ?)
	`, show.DefaultScriptID, firstID)
	if err != nil {
		return fmt.Errorf("seed playback state: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)
	`, show.SettingScriptName, show.DefaultDisplayName)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireRow(result rowsAffecter, format string, args ...any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return show.NotFound(format, args...)
	}
	return nil
}
