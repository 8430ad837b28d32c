package playback

import (
	"context"
	"log/slog"

	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// Reasons reported when a transition does not move the pointer.
const (
	ReasonAtEnd   = "at end of script"
	ReasonAtStart = "at start of script"
	ReasonUnset   = "no position set"
)

// Transition is the outcome of a pointer move.
type Transition struct {
	// Moved is false for the boundary no-ops.
	Moved bool

	// Reason explains a no-op.
	Reason string

	// State is the snapshot after the transition, read in the same
	// transaction.
	State show.State
}

// CueID returns the current cue id after the transition, 0 if Unset.
func (t Transition) CueID() int64 {
	if t.State.CurrentCueID == nil {
		return 0
	}
	return *t.State.CurrentCueID
}

// Machine is the playback state machine.
type Machine struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// New creates a Machine over the given store.
func New(st *store.Store, opts ...Option) *Machine {
	m := &Machine{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a consistent snapshot of the current position.
func (m *Machine) State(ctx context.Context) (show.State, error) {
	var state show.State
	err := m.store.View(ctx, func(tx *store.Tx) error {
		var err error
		state, err = Snapshot(ctx, tx)
		return err
	})
	return state, err
}

// Advance moves to the next cue. At the last cue it is a no-op.
func (m *Machine) Advance(ctx context.Context) (Transition, error) {
	return m.step(ctx, "advance", func(tx *store.Tx, scriptID int64, seq int) (show.Cue, bool, error) {
		return tx.NextCue(ctx, scriptID, seq)
	}, ReasonAtEnd)
}

// Previous moves to the previous cue. At the first cue it is a no-op.
func (m *Machine) Previous(ctx context.Context) (Transition, error) {
	return m.step(ctx, "previous", func(tx *store.Tx, scriptID int64, seq int) (show.Cue, bool, error) {
		return tx.PrevCue(ctx, scriptID, seq)
	}, ReasonAtStart)
}

type neighbour func(tx *store.Tx, scriptID int64, seq int) (show.Cue, bool, error)

func (m *Machine) step(ctx context.Context, op string, find neighbour, boundary string) (Transition, error) {
	var tr Transition
	err := m.store.Update(ctx, func(tx *store.Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}

		if !p.IsSet() {
			tr.Reason = ReasonUnset
		} else {
			cur, err := tx.Cue(ctx, *p.CurrentCueID)
			if err != nil {
				return err
			}
			next, ok, err := find(tx, p.ScriptID, cur.SequenceNumber)
			if err != nil {
				return err
			}
			if ok {
				if err := tx.SetCurrentCue(ctx, p.ScriptID, &next.ID); err != nil {
					return err
				}
				tr.Moved = true
			} else {
				tr.Reason = boundary
			}
		}

		tr.State, err = Snapshot(ctx, tx)
		return err
	})
	if err != nil {
		return Transition{}, err
	}

	m.logger.Debug("playback "+op, "moved", tr.Moved, "cue_id", tr.CueID(), "reason", tr.Reason)
	return tr, nil
}

// Goto moves to the cue holding sequence number seq in the active script.
// Fails with NOT_FOUND (naming seq) and leaves the pointer alone if there
// is no such cue.
func (m *Machine) Goto(ctx context.Context, seq int) (Transition, error) {
	var tr Transition
	err := m.store.Update(ctx, func(tx *store.Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		c, err := tx.CueAt(ctx, p.ScriptID, seq)
		if err != nil {
			return err
		}
		if err := tx.SetCurrentCue(ctx, p.ScriptID, &c.ID); err != nil {
			return err
		}
		tr.Moved = true
		tr.State, err = Snapshot(ctx, tx)
		return err
	})
	if err != nil {
		return Transition{}, err
	}

	m.logger.Debug("playback goto", "seq", seq, "cue_id", tr.CueID())
	return tr, nil
}

// Reset moves to the first cue. Fails with NO_CUES on an empty script.
func (m *Machine) Reset(ctx context.Context) (Transition, error) {
	var tr Transition
	err := m.store.Update(ctx, func(tx *store.Tx) error {
		state, err := ResetTx(ctx, tx)
		if err != nil {
			return err
		}
		if state.CurrentCueID == nil {
			return show.NoCues("script has no cues")
		}
		tr = Transition{Moved: true, State: state}
		return nil
	})
	if err != nil {
		return Transition{}, err
	}

	m.logger.Debug("playback reset", "cue_id", tr.CueID())
	return tr, nil
}

// Clear wipes every script, cue and assignment, leaving an empty default
// script and an Unset pointer. Irreversible.
func (m *Machine) Clear(ctx context.Context) (Transition, error) {
	var tr Transition
	err := m.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Wipe(ctx); err != nil {
			return err
		}
		var err error
		tr.Moved = true
		tr.State, err = Snapshot(ctx, tx)
		return err
	})
	if err != nil {
		return Transition{}, err
	}

	m.logger.Info("show data cleared")
	return tr, nil
}

// ResetTx points playback at the first cue of the active script (Unset when
// the script is empty) inside the caller's transaction and returns the new
// snapshot. Bulk import uses it to reposition before committing.
func ResetTx(ctx context.Context, tx *store.Tx) (show.State, error) {
	p, err := tx.Pointer(ctx)
	if err != nil {
		return show.State{}, err
	}
	first, ok, err := tx.FirstCue(ctx, p.ScriptID)
	if err != nil {
		return show.State{}, err
	}
	var id *int64
	if ok {
		id = &first.ID
	}
	if err := tx.SetCurrentCue(ctx, p.ScriptID, id); err != nil {
		return show.State{}, err
	}
	return Snapshot(ctx, tx)
}

// Reposition is a sequencer delete hook. It runs inside the delete
// transaction, after the gap has been closed.
func Reposition(ctx context.Context, tx *store.Tx, deleted show.DeletedCue) error {
	_, err := RepositionTx(ctx, tx, deleted)
	return err
}

// RepositionTx moves the pointer off a deleted current cue and reports
// whether it did.
func RepositionTx(ctx context.Context, tx *store.Tx, deleted show.DeletedCue) (bool, error) {
	p, err := tx.Pointer(ctx)
	if err != nil {
		return false, err
	}
	if !p.IsSet() || *p.CurrentCueID != deleted.CueID {
		return false, nil
	}

	var target *int64
	c, err := tx.CueAt(ctx, deleted.ScriptID, deleted.SequenceNumber)
	switch {
	case err == nil:
		target = &c.ID
	case show.IsNotFound(err):
		last, ok, err := tx.LastCue(ctx, deleted.ScriptID)
		if err != nil {
			return false, err
		}
		if ok {
			target = &last.ID
		}
	default:
		return false, err
	}

	if err := tx.SetCurrentCue(ctx, p.ScriptID, target); err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot reads the current state inside tx.
func Snapshot(ctx context.Context, tx *store.Tx) (show.State, error) {
	p, err := tx.Pointer(ctx)
	if err != nil {
		return show.State{}, err
	}

	state := show.State{
		ScriptID:     p.ScriptID,
		CurrentCueID: p.CurrentCueID,
		Cameras:      []show.CameraAssignment{},
	}

	state.ScriptName, err = tx.ScriptName(ctx, p.ScriptID)
	if err != nil {
		return show.State{}, err
	}

	if p.IsSet() {
		c, err := tx.Cue(ctx, *p.CurrentCueID)
		if err != nil {
			return show.State{}, err
		}
		state.Cue = &c
		state.Cameras, err = tx.Assignments(ctx, c.ID)
		if err != nil {
			return show.State{}, err
		}
	}
	return state, nil
}
