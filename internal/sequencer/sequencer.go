package sequencer

import (
	"context"
	"log/slog"

	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// DeleteHook runs inside the delete transaction after the gap is closed.
// Returning an error rolls the whole delete back.
//
// Playback registers one to move the pointer off a deleted current cue.
type DeleteHook func(ctx context.Context, tx *store.Tx, deleted show.DeletedCue) error

// Sequencer performs structural cue mutations.
type Sequencer struct {
	store  *store.Store
	logger *slog.Logger
	hooks  []DeleteHook
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = l
	}
}

// WithDeleteHook adds a hook run by every Delete. Hooks run in the order
// they were added.
func WithDeleteHook(h DeleteHook) Option {
	return func(s *Sequencer) {
		s.hooks = append(s.hooks, h)
	}
}

// New creates a Sequencer over the given store.
func New(st *store.Store, opts ...Option) *Sequencer {
	s := &Sequencer{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert writes a new cue at the placement and returns its id.
//
// Fails with INVALID_POSITION for a malformed placement and NOT_FOUND when
// the target cue does not exist in the script. On failure nothing is written.
func (s *Sequencer) Insert(ctx context.Context, scriptID int64, at Placement, content show.CueContent) (int64, error) {
	if err := at.Validate(); err != nil {
		return 0, err
	}
	content = content.Normalize()

	var (
		id  int64
		seq int
	)
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		seq, err = at.resolve(ctx, tx, scriptID)
		if err != nil {
			return err
		}
		if err := tx.ShiftCues(ctx, scriptID, seq, 1); err != nil {
			return err
		}
		id, err = tx.InsertCue(ctx, scriptID, seq, content)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("cue inserted", "cue_id", id, "seq", seq, "position", at.Position)
	return id, nil
}

// Delete removes a cue and its camera assignments, closes the gap it leaves,
// then runs the configured hooks followed by extra, all in one transaction.
func (s *Sequencer) Delete(ctx context.Context, cueID int64, extra ...DeleteHook) (show.DeletedCue, error) {
	var deleted show.DeletedCue
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Cue(ctx, cueID)
		if err != nil {
			return err
		}
		deleted = show.DeletedCue{
			CueID:          c.ID,
			ScriptID:       c.ScriptID,
			SequenceNumber: c.SequenceNumber,
		}

		if err := tx.DeleteCue(ctx, cueID); err != nil {
			return err
		}
		if err := tx.ShiftCues(ctx, c.ScriptID, c.SequenceNumber+1, -1); err != nil {
			return err
		}

		hooks := append(append([]DeleteHook(nil), s.hooks...), extra...)
		for _, h := range hooks {
			if err := h(ctx, tx, deleted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return show.DeletedCue{}, err
	}

	s.logger.Debug("cue deleted", "cue_id", cueID, "seq", deleted.SequenceNumber)
	return deleted, nil
}

// Replace discards every cue of the script and writes cues in order as
// 1..N, including their camera assignments. It runs inside the caller's
// transaction so an import can reposition playback before committing.
// Returns the new cue ids in order.
func Replace(ctx context.Context, tx *store.Tx, scriptID int64, cues []show.ImportCue) ([]int64, error) {
	if err := tx.DeleteScriptCues(ctx, scriptID); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(cues))
	for i, c := range cues {
		content := show.CueContent{LineText: c.LineText, Notes: c.Notes}.Normalize()
		id, err := tx.InsertCue(ctx, scriptID, i+1, content)
		if err != nil {
			return nil, err
		}
		for _, shot := range c.Cameras {
			err := tx.InsertAssignment(ctx, show.CameraAssignment{
				CueID:        id,
				CameraNumber: shot.CameraNumber,
				Subject:      show.NormalizeText(shot.Subject),
				ShotType:     show.NormalizeText(shot.ShotType),
				Notes:        show.NormalizeText(shot.Notes),
				ExpectedTake: shot.ExpectedTake,
			})
			if err != nil {
				return nil, err
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
