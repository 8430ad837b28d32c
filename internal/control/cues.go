package control

import (
	"context"

	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// Default cue window around the current cue.
const (
	DefaultWindowBefore = 1
	DefaultWindowAfter  = 2
)

// InsertCue adds a cue to the active script.
func (c *Controller) InsertCue(ctx context.Context, at sequencer.Placement, content show.CueContent) (int64, error) {
	scriptID, err := c.activeScript(ctx)
	if err != nil {
		return 0, err
	}
	id, err := c.seq.Insert(ctx, scriptID, at, content)
	if err != nil {
		return 0, err
	}
	c.publish(ctx, hub.CueCreated(id))
	return id, nil
}

// UpdateCue replaces a cue's text and notes.
func (c *Controller) UpdateCue(ctx context.Context, cueID int64, content show.CueContent) error {
	content = content.Normalize()
	err := c.store.Update(ctx, func(tx *store.Tx) error {
		return tx.UpdateCue(ctx, cueID, content)
	})
	if err != nil {
		return err
	}
	c.publish(ctx, hub.CueUpdated(cueID))
	return nil
}

// DeleteCue removes a cue. If it was current, playback moves to a
// neighbour in the same transaction and a state_update follows.
func (c *Controller) DeleteCue(ctx context.Context, cueID int64) error {
	var moved bool
	_, err := c.seq.Delete(ctx, cueID, func(ctx context.Context, tx *store.Tx, d show.DeletedCue) error {
		var err error
		moved, err = playback.RepositionTx(ctx, tx, d)
		return err
	})
	if err != nil {
		return err
	}

	c.publish(ctx, hub.CueDeleted(cueID))
	if moved {
		state, err := c.play.State(ctx)
		if err != nil {
			c.logger.Warn("read state after delete", "cue_id", cueID, "error", err)
			return nil
		}
		c.publish(ctx, hub.StateUpdate(state))
	}
	return nil
}

// Cue returns one cue with its cameras.
func (c *Controller) Cue(ctx context.Context, cueID int64) (show.CueWithCameras, error) {
	var out show.CueWithCameras
	err := c.store.View(ctx, func(tx *store.Tx) error {
		cue, err := tx.Cue(ctx, cueID)
		if err != nil {
			return err
		}
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		cams, err := tx.Assignments(ctx, cueID)
		if err != nil {
			return err
		}
		out = show.CueWithCameras{
			Cue:       cue,
			IsCurrent: p.IsSet() && *p.CurrentCueID == cueID,
			Cameras:   cams,
		}
		return nil
	})
	return out, err
}

// CueWindow returns the cues from before positions ahead of the current cue
// to after positions past it, each with its cameras. Empty when no cue is
// current. Negative arguments take the defaults.
func (c *Controller) CueWindow(ctx context.Context, before, after int) ([]show.CueWithCameras, error) {
	if before < 0 {
		before = DefaultWindowBefore
	}
	if after < 0 {
		after = DefaultWindowAfter
	}

	out := []show.CueWithCameras{}
	err := c.store.View(ctx, func(tx *store.Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil || !p.IsSet() {
			return err
		}
		cur, err := tx.Cue(ctx, *p.CurrentCueID)
		if err != nil {
			return err
		}
		from := max(cur.SequenceNumber-before, 1)
		out, err = tx.CuesWithCameras(ctx, p.ScriptID, from, cur.SequenceNumber+after, p.CurrentCueID)
		return err
	})
	return out, err
}

// AllCues returns every cue of the active script with its cameras.
func (c *Controller) AllCues(ctx context.Context) ([]show.CueWithCameras, error) {
	var out []show.CueWithCameras
	err := c.store.View(ctx, func(tx *store.Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		out, err = tx.CuesWithCameras(ctx, p.ScriptID, 1, 0, p.CurrentCueID)
		return err
	})
	return out, err
}
