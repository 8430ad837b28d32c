package control

import (
	"context"

	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// UpsertCamera writes the shot for (cueID, camera). An existing assignment
// keeps its expected_take flag.
func (c *Controller) UpsertCamera(ctx context.Context, cueID int64, camera int, shot show.Shot) error {
	if camera <= 0 {
		return show.Validation("camera number must be positive")
	}
	shot = shot.Normalize()
	if shot.Subject == "" {
		return show.Validation("subject is required")
	}

	err := c.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.Cue(ctx, cueID); err != nil {
			return err
		}
		return tx.UpsertAssignment(ctx, cueID, camera, shot)
	})
	if err != nil {
		return err
	}
	c.publish(ctx, hub.CameraUpdated(cueID, camera))
	return nil
}

// DeleteCamera removes the assignment for (cueID, camera).
func (c *Controller) DeleteCamera(ctx context.Context, cueID int64, camera int) error {
	err := c.store.Update(ctx, func(tx *store.Tx) error {
		return tx.DeleteAssignment(ctx, cueID, camera)
	})
	if err != nil {
		return err
	}
	c.publish(ctx, hub.CameraUpdated(cueID, camera))
	return nil
}

// ToggleExpectedTake flips the expected_take flag and returns the new value.
func (c *Controller) ToggleExpectedTake(ctx context.Context, cueID int64, camera int) (bool, error) {
	var on bool
	err := c.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		on, err = tx.ToggleExpectedTake(ctx, cueID, camera)
		return err
	})
	if err != nil {
		return false, err
	}
	c.publish(ctx, hub.CameraUpdated(cueID, camera))
	return on, nil
}

// CameraView returns the forward-looking view for one camera.
func (c *Controller) CameraView(ctx context.Context, camera int) (show.CameraView, error) {
	return c.proj.Project(ctx, camera)
}

// Cameras returns every camera in use with its assignment count.
func (c *Controller) Cameras(ctx context.Context) ([]show.CameraCount, error) {
	return c.proj.Cameras(ctx)
}
