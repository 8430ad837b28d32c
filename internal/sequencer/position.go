package sequencer

import (
	"context"
	"strings"

	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// Position names where a new cue goes.
type Position string

const (
	Start  Position = "start"
	End    Position = "end"
	Before Position = "before"
	After  Position = "after"
)

// ParsePosition parses a position name. Matching is case-insensitive.
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case Start, End, Before, After:
		return p, nil
	default:
		return "", show.InvalidPosition("unknown position %q (want start, end, before or after)", s)
	}
}

// NeedsTarget reports whether the position is relative to another cue.
func (p Position) NeedsTarget() bool {
	return p == Before || p == After
}

// Placement is a position plus, for before/after, the cue it is relative to.
type Placement struct {
	Position Position `json:"position"`
	Target   int64    `json:"target_cue_id,omitempty"`
}

// AtStart places a cue first.
func AtStart() Placement { return Placement{Position: Start} }

// AtEnd places a cue last.
func AtEnd() Placement { return Placement{Position: End} }

// BeforeCue places a cue immediately before target.
func BeforeCue(target int64) Placement { return Placement{Position: Before, Target: target} }

// AfterCue places a cue immediately after target.
func AfterCue(target int64) Placement { return Placement{Position: After, Target: target} }

// Validate checks the placement is well formed. It does not look up the
// target cue.
func (p Placement) Validate() error {
	switch p.Position {
	case Start, End:
		return nil
	case Before, After:
		if p.Target <= 0 {
			return show.InvalidPosition("position %q requires a target cue", p.Position)
		}
		return nil
	default:
		return show.InvalidPosition("unknown position %q", p.Position)
	}
}

// resolve returns the sequence number the new cue will occupy.
func (p Placement) resolve(ctx context.Context, tx *store.Tx, scriptID int64) (int, error) {
	switch p.Position {
	case Start:
		return 1, nil
	case End:
		max, err := tx.MaxSeq(ctx, scriptID)
		if err != nil {
			return 0, err
		}
		return max + 1, nil
	}

	target, err := tx.Cue(ctx, p.Target)
	if err != nil {
		return 0, err
	}
	if target.ScriptID != scriptID {
		return 0, show.NotFound("cue %d not found in script %d", p.Target, scriptID)
	}
	if p.Position == Before {
		return target.SequenceNumber, nil
	}
	return target.SequenceNumber + 1, nil
}
