package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/cuesheet/internal/show"
)

const cueColumns = `id, script_id, sequence_number, line_text, notes`

// Pointer returns the playback pointer row.
func (t *Tx) Pointer(ctx context.Context) (show.Pointer, error) {
	var (
		scriptID sql.NullInt64
		cueID    sql.NullInt64
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT script_id, current_cue_id FROM playback_state WHERE id = 1
	`).Scan(&scriptID, &cueID)
	if err != nil {
		return show.Pointer{}, notFoundIf(err, "playback state missing")
	}

	p := show.Pointer{ScriptID: show.DefaultScriptID}
	if scriptID.Valid {
		p.ScriptID = scriptID.Int64
	}
	if cueID.Valid {
		id := cueID.Int64
		p.CurrentCueID = &id
	}
	return p, nil
}

// Cue returns the cue with the given id.
func (t *Tx) Cue(ctx context.Context, cueID int64) (show.Cue, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+cueColumns+` FROM cues WHERE id = ?`, cueID)
	c, err := scanCue(row)
	if err != nil {
		return show.Cue{}, notFoundIf(err, "cue %d not found", cueID)
	}
	return c, nil
}

// CueAt returns the cue holding sequence number seq in the script.
func (t *Tx) CueAt(ctx context.Context, scriptID int64, seq int) (show.Cue, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+cueColumns+` FROM cues
		WHERE script_id = ? AND sequence_number = ?
	`, scriptID, seq)
	c, err := scanCue(row)
	if err != nil {
		return show.Cue{}, notFoundIf(err, "cue #%d not found", seq)
	}
	return c, nil
}

// NextCue returns the cue with the smallest sequence number strictly greater
// than seq. ok is false when seq is the last position.
func (t *Tx) NextCue(ctx context.Context, scriptID int64, seq int) (c show.Cue, ok bool, err error) {
	return t.optionalCue(ctx, `
		SELECT `+cueColumns+` FROM cues
		WHERE script_id = ? AND sequence_number > ?
		ORDER BY sequence_number ASC LIMIT 1
	`, scriptID, seq)
}

// PrevCue returns the cue with the largest sequence number strictly less
// than seq. ok is false when seq is the first position.
func (t *Tx) PrevCue(ctx context.Context, scriptID int64, seq int) (c show.Cue, ok bool, err error) {
	return t.optionalCue(ctx, `
		SELECT `+cueColumns+` FROM cues
		WHERE script_id = ? AND sequence_number < ?
		ORDER BY sequence_number DESC LIMIT 1
	`, scriptID, seq)
}

// FirstCue returns the lowest-numbered cue of the script.
func (t *Tx) FirstCue(ctx context.Context, scriptID int64) (c show.Cue, ok bool, err error) {
	return t.optionalCue(ctx, `
		SELECT `+cueColumns+` FROM cues
		WHERE script_id = ?
		ORDER BY sequence_number ASC LIMIT 1
	`, scriptID)
}

// LastCue returns the highest-numbered cue of the script.
func (t *Tx) LastCue(ctx context.Context, scriptID int64) (c show.Cue, ok bool, err error) {
	return t.optionalCue(ctx, `
		SELECT `+cueColumns+` FROM cues
		WHERE script_id = ?
		ORDER BY sequence_number DESC LIMIT 1
	`, scriptID)
}

func (t *Tx) optionalCue(ctx context.Context, query string, args ...any) (show.Cue, bool, error) {
	c, err := scanCue(t.tx.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return show.Cue{}, false, nil
	}
	if err != nil {
		return show.Cue{}, false, fmt.Errorf("query cue: %w", err)
	}
	return c, true, nil
}

// MaxSeq returns the highest sequence number in the script, 0 if empty.
func (t *Tx) MaxSeq(ctx context.Context, scriptID int64) (int, error) {
	var max sql.NullInt64
	err := t.tx.QueryRowContext(ctx, `
		SELECT MAX(sequence_number) FROM cues WHERE script_id = ?
	`, scriptID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("query max sequence: %w", err)
	}
	return int(max.Int64), nil
}

// Cues returns every cue of the script ordered by sequence number.
// Returns an empty slice (not nil) for an empty script.
func (t *Tx) Cues(ctx context.Context, scriptID int64) ([]show.Cue, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+cueColumns+` FROM cues
		WHERE script_id = ?
		ORDER BY sequence_number ASC, id ASC
	`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("query cues: %w", err)
	}
	defer rows.Close()

	cues := []show.Cue{}
	for rows.Next() {
		c, err := scanCue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cue: %w", err)
		}
		cues = append(cues, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cues: %w", err)
	}
	return cues, nil
}

// Assignments returns the camera assignments of one cue ordered by camera.
func (t *Tx) Assignments(ctx context.Context, cueID int64) ([]show.CameraAssignment, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT cue_id, camera_number, subject, shot_type, notes, expected_take
		FROM camera_assignments
		WHERE cue_id = ?
		ORDER BY camera_number ASC
	`, cueID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	out := []show.CameraAssignment{}
	for rows.Next() {
		var a show.CameraAssignment
		if err := rows.Scan(&a.CueID, &a.CameraNumber, &a.Subject, &a.ShotType, &a.Notes, &a.ExpectedTake); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}

// Assignment returns the assignment for (cueID, camera).
func (t *Tx) Assignment(ctx context.Context, cueID int64, camera int) (show.CameraAssignment, error) {
	a := show.CameraAssignment{CueID: cueID, CameraNumber: camera}
	err := t.tx.QueryRowContext(ctx, `
		SELECT subject, shot_type, notes, expected_take
		FROM camera_assignments
		WHERE cue_id = ? AND camera_number = ?
	`, cueID, camera).Scan(&a.Subject, &a.ShotType, &a.Notes, &a.ExpectedTake)
	if err != nil {
		return show.CameraAssignment{}, notFoundIf(err, "camera %d has no assignment at cue %d", camera, cueID)
	}
	return a, nil
}

// CuesWithCameras returns cues of the script whose sequence number lies in
// [fromSeq, toSeq], each with its assignments. A toSeq of 0 means no upper
// bound. currentID marks IsCurrent on the matching cue and may be nil.
//
// The flat join rows are folded into one entry per cue, keeping the order
// in which cues first appear.
func (t *Tx) CuesWithCameras(ctx context.Context, scriptID int64, fromSeq, toSeq int, currentID *int64) ([]show.CueWithCameras, error) {
	query := `
		SELECT c.id, c.script_id, c.sequence_number, c.line_text, c.notes,
		       ca.camera_number, ca.subject, ca.shot_type, ca.notes, ca.expected_take
		FROM cues c
		LEFT JOIN camera_assignments ca ON ca.cue_id = c.id
		WHERE c.script_id = ? AND c.sequence_number >= ?`
	args := []any{scriptID, fromSeq}
	if toSeq > 0 {
		query += ` AND c.sequence_number <= ?`
		args = append(args, toSeq)
	}
	query += ` ORDER BY c.sequence_number ASC, ca.camera_number ASC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cue range: %w", err)
	}
	defer rows.Close()

	out := []show.CueWithCameras{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			c        show.Cue
			camera   sql.NullInt64
			subject  sql.NullString
			shotType sql.NullString
			notes    sql.NullString
			expected sql.NullBool
		)
		if err := rows.Scan(&c.ID, &c.ScriptID, &c.SequenceNumber, &c.LineText, &c.Notes,
			&camera, &subject, &shotType, &notes, &expected); err != nil {
			return nil, fmt.Errorf("scan cue range: %w", err)
		}

		i, seen := index[c.ID]
		if !seen {
			i = len(out)
			index[c.ID] = i
			out = append(out, show.CueWithCameras{
				Cue:       c,
				IsCurrent: currentID != nil && *currentID == c.ID,
				Cameras:   []show.CameraAssignment{},
			})
		}

		if camera.Valid {
			out[i].Cameras = append(out[i].Cameras, show.CameraAssignment{
				CueID:        c.ID,
				CameraNumber: int(camera.Int64),
				Subject:      subject.String,
				ShotType:     shotType.String,
				Notes:        notes.String,
				ExpectedTake: expected.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cue range: %w", err)
	}
	return out, nil
}

// CameraWindow returns up to limit cues starting at fromSeq, each joined
// with this camera's assignment (nil when the camera is idle at that cue).
func (t *Tx) CameraWindow(ctx context.Context, scriptID int64, camera, fromSeq, limit int) ([]show.CameraCue, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT c.id, c.sequence_number, c.line_text, c.notes,
		       ca.subject, ca.shot_type, ca.notes, ca.expected_take
		FROM cues c
		LEFT JOIN camera_assignments ca ON ca.cue_id = c.id AND ca.camera_number = ?
		WHERE c.script_id = ? AND c.sequence_number >= ?
		ORDER BY c.sequence_number ASC
		LIMIT ?
	`, camera, scriptID, fromSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("query camera window: %w", err)
	}
	defer rows.Close()

	out := []show.CameraCue{}
	for rows.Next() {
		var (
			cc       show.CameraCue
			subject  sql.NullString
			shotType sql.NullString
			notes    sql.NullString
			expected sql.NullBool
		)
		if err := rows.Scan(&cc.CueID, &cc.SequenceNumber, &cc.LineText, &cc.Notes,
			&subject, &shotType, &notes, &expected); err != nil {
			return nil, fmt.Errorf("scan camera window: %w", err)
		}
		if subject.Valid {
			cc.Assignment = &show.CameraAssignment{
				CueID:        cc.CueID,
				CameraNumber: camera,
				Subject:      subject.String,
				ShotType:     shotType.String,
				Notes:        notes.String,
				ExpectedTake: expected.Bool,
			}
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate camera window: %w", err)
	}
	return out, nil
}

// CameraCounts returns, per camera number in use, how many cues of the
// script it has assignments at. Ordered by camera number.
func (t *Tx) CameraCounts(ctx context.Context, scriptID int64) ([]show.CameraCount, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT ca.camera_number, COUNT(DISTINCT ca.cue_id)
		FROM camera_assignments ca
		JOIN cues c ON c.id = ca.cue_id
		WHERE c.script_id = ?
		GROUP BY ca.camera_number
		ORDER BY ca.camera_number ASC
	`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("query camera counts: %w", err)
	}
	defer rows.Close()

	out := []show.CameraCount{}
	for rows.Next() {
		var c show.CameraCount
		if err := rows.Scan(&c.CameraNumber, &c.AssignmentCount); err != nil {
			return nil, fmt.Errorf("scan camera count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate camera counts: %w", err)
	}
	return out, nil
}

// Setting returns the value stored under key. ok is false if unset.
func (t *Tx) Setting(ctx context.Context, key string) (value string, ok bool, err error) {
	err = t.tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query setting %q: %w", key, err)
	}
	return value, true, nil
}

// ScriptName resolves the display name: the script_name setting, then the
// script row's name, then show.DefaultDisplayName.
func (t *Tx) ScriptName(ctx context.Context, scriptID int64) (string, error) {
	name, ok, err := t.Setting(ctx, show.SettingScriptName)
	if err != nil {
		return "", err
	}
	if ok && name != "" {
		return name, nil
	}

	err = t.tx.QueryRowContext(ctx, `SELECT name FROM scripts WHERE id = ?`, scriptID).Scan(&name)
	if err == sql.ErrNoRows || (err == nil && name == "") {
		return show.DefaultDisplayName, nil
	}
	if err != nil {
		return "", fmt.Errorf("query script name: %w", err)
	}
	return name, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCue(r rowScanner) (show.Cue, error) {
	var c show.Cue
	err := r.Scan(&c.ID, &c.ScriptID, &c.SequenceNumber, &c.LineText, &c.Notes)
	return c, err
}
