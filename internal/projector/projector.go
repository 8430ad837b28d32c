// Package projector computes per-camera views of the cue sequence.
package projector

import (
	"context"

	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// Defaults for Config.
const (
	DefaultWindow           = 10
	DefaultPreviewLookahead = 2
)

// Config sizes the camera view.
type Config struct {
	// Window is the maximum number of cues in a view, current included.
	Window int

	// PreviewLookahead is how many positions past current a next shot may
	// be and still count as a preview.
	PreviewLookahead int
}

// DefaultConfig returns the standard 10-cue window with a 2-cue preview.
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, PreviewLookahead: DefaultPreviewLookahead}
}

// Projector answers read-only camera queries.
type Projector struct {
	store *store.Store
	cfg   Config
}

// New creates a Projector. A non-positive Window or a negative
// PreviewLookahead takes its default.
func New(st *store.Store, cfg Config) *Projector {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.PreviewLookahead < 0 {
		cfg.PreviewLookahead = DefaultPreviewLookahead
	}
	return &Projector{store: st, cfg: cfg}
}

// Config returns the effective configuration.
func (p *Projector) Config() Config {
	return p.cfg
}

// Project returns the view for one camera: up to Window cues starting at
// the current cue, annotated for that camera. Cues is empty when no cue is
// current.
func (p *Projector) Project(ctx context.Context, camera int) (show.CameraView, error) {
	if camera <= 0 {
		return show.CameraView{}, show.Validation("camera number must be positive")
	}

	view := show.CameraView{CameraNumber: camera, Cues: []show.CameraCue{}}
	err := p.store.View(ctx, func(tx *store.Tx) error {
		ptr, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		view.ScriptName, err = tx.ScriptName(ctx, ptr.ScriptID)
		if err != nil {
			return err
		}
		if !ptr.IsSet() {
			return nil
		}

		cur, err := tx.Cue(ctx, *ptr.CurrentCueID)
		if err != nil {
			return err
		}
		window, err := tx.CameraWindow(ctx, ptr.ScriptID, camera, cur.SequenceNumber, p.cfg.Window)
		if err != nil {
			return err
		}
		view.Cues = Annotate(window, cur.ID, cur.SequenceNumber, p.cfg.PreviewLookahead)
		return nil
	})
	if err != nil {
		return show.CameraView{}, err
	}
	return view, nil
}

// Cameras returns every camera in use with its assignment count.
func (p *Projector) Cameras(ctx context.Context) ([]show.CameraCount, error) {
	var counts []show.CameraCount
	err := p.store.View(ctx, func(tx *store.Tx) error {
		ptr, err := tx.Pointer(ctx)
		if err != nil {
			return err
		}
		counts, err = tx.CameraCounts(ctx, ptr.ScriptID)
		return err
	})
	return counts, err
}

// Annotate sets the view flags on a window of cues fetched forward from the
// current cue. It modifies and returns window.
//
//   - IsCurrent marks the cue whose id is currentID.
//   - IsLastShot marks the last assigned non-current cue in the window,
//     found scanning backward from the window's end. The scan never looks
//     before the window, so a shot earlier in the script is not found.
//   - IsNextShot marks the first assigned non-current cue scanning forward;
//     it is also IsPreview when it is at most lookahead positions past
//     currentSeq.
//
// Every other cue has the flags cleared.
func Annotate(window []show.CameraCue, currentID int64, currentSeq, lookahead int) []show.CameraCue {
	for i := range window {
		window[i].IsCurrent = window[i].CueID == currentID
		window[i].IsLastShot = false
		window[i].IsNextShot = false
		window[i].IsPreview = false
	}

	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Assigned() && !window[i].IsCurrent {
			window[i].IsLastShot = true
			break
		}
	}

	for i := range window {
		if window[i].Assigned() && !window[i].IsCurrent {
			window[i].IsNextShot = true
			window[i].IsPreview = window[i].SequenceNumber-currentSeq <= lookahead
			break
		}
	}

	return window
}
