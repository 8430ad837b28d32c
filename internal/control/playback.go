package control

import (
	"context"

	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/playback"
)

// Advance moves to the next cue.
func (c *Controller) Advance(ctx context.Context) (playback.Transition, error) {
	return c.move(ctx, c.play.Advance)
}

// Previous moves to the previous cue.
func (c *Controller) Previous(ctx context.Context) (playback.Transition, error) {
	return c.move(ctx, c.play.Previous)
}

// Goto moves to the cue with sequence number seq.
func (c *Controller) Goto(ctx context.Context, seq int) (playback.Transition, error) {
	return c.move(ctx, func(ctx context.Context) (playback.Transition, error) {
		return c.play.Goto(ctx, seq)
	})
}

// Reset moves to the first cue.
func (c *Controller) Reset(ctx context.Context) (playback.Transition, error) {
	return c.move(ctx, c.play.Reset)
}

// Clear wipes all show data.
func (c *Controller) Clear(ctx context.Context) (playback.Transition, error) {
	tr, err := c.play.Clear(ctx)
	if err != nil {
		return tr, err
	}
	c.publish(ctx, hub.DataCleared())
	c.publish(ctx, hub.StateUpdate(tr.State))
	return tr, nil
}

func (c *Controller) move(ctx context.Context, fn func(context.Context) (playback.Transition, error)) (playback.Transition, error) {
	tr, err := fn(ctx)
	if err != nil {
		return tr, err
	}
	if tr.Moved {
		c.publish(ctx, hub.StateUpdate(tr.State))
	}
	return tr, nil
}
