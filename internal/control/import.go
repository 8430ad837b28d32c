package control

import (
	"context"
	"fmt"

	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// ImportResult summarizes a committed import.
type ImportResult struct {
	Cues        int `json:"cues"`
	Assignments int `json:"assignments"`
}

// Import replaces every cue and assignment of the active script with cues
// (numbered 1..N in slice order) and resets playback to the first cue.
// cues is validated in full first; on any problem nothing is written.
func (c *Controller) Import(ctx context.Context, cues []show.ImportCue) (ImportResult, error) {
	return c.ImportNamed(ctx, "", cues)
}

// ImportNamed is Import that also sets the script display name, in the same
// transaction, when name is not empty.
func (c *Controller) ImportNamed(ctx context.Context, name string, cues []show.ImportCue) (ImportResult, error) {
	if err := ValidateImport(cues); err != nil {
		return ImportResult{}, err
	}
	name = show.NormalizeText(name)

	var (
		result ImportResult
		state  show.State
	)
	err := c.store.Update(ctx, func(tx *store.Tx) error {
		p, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		ids, err := sequencer.Replace(ctx, tx, p.ScriptID, cues)
		if err != nil {
			return err
		}
		result.Cues = len(ids)
		for _, cue := range cues {
			result.Assignments += len(cue.Cameras)
		}
		if name != "" {
			if err := tx.SetSetting(ctx, show.SettingScriptName, name); err != nil {
				return err
			}
		}
		state, err = playback.ResetTx(ctx, tx)
		return err
	})
	if err != nil {
		return ImportResult{}, err
	}

	c.logger.Info("import committed", "cues", result.Cues, "assignments", result.Assignments)
	if name != "" {
		c.publish(ctx, hub.SettingUpdated(show.SettingScriptName, name))
	}
	c.publish(ctx, hub.StateUpdate(state))
	return result, nil
}

// ValidateImport checks an import before any write: at least one cue, and
// per cue positive, unique camera numbers with a subject.
func ValidateImport(cues []show.ImportCue) error {
	if len(cues) == 0 {
		return show.Validation("import contains no cues")
	}

	var problems []string
	for i, cue := range cues {
		seen := make(map[int]bool, len(cue.Cameras))
		for _, shot := range cue.Cameras {
			switch {
			case shot.CameraNumber <= 0:
				problems = append(problems, fmt.Sprintf("cue %d: camera number must be positive, got %d", i+1, shot.CameraNumber))
			case seen[shot.CameraNumber]:
				problems = append(problems, fmt.Sprintf("cue %d: duplicate assignment for camera %d", i+1, shot.CameraNumber))
			}
			seen[shot.CameraNumber] = true
			if show.NormalizeText(shot.Subject) == "" {
				problems = append(problems, fmt.Sprintf("cue %d camera %d: subject is required", i+1, shot.CameraNumber))
			}
		}
	}
	if len(problems) > 0 {
		return show.Validation("import rejected", problems...)
	}
	return nil
}

// Export returns every cue of the active script with its cameras, in order.
func (c *Controller) Export(ctx context.Context) ([]show.CueWithCameras, error) {
	return c.AllCues(ctx)
}
