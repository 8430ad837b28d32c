// Package playback owns the shared current-cue pointer.
//
// The machine has two states: Unset (no current cue) and Positioned(cue).
// Advance, Previous, Goto and Reset move the pointer; Clear wipes the show
// and returns to Unset. Every transition reads the resulting State inside
// the same transaction that moved the pointer, so a snapshot never pairs a
// cue with another cue's cameras.
//
// Reposition is registered as a sequencer delete hook and keeps the pointer
// off deleted cues:
//
//	deleted cue was not current  -> pointer unchanged
//	a cue now holds deleted seq  -> that cue (the one that followed)
//	deleted cue was last         -> new last cue
//	script now empty             -> Unset
package playback
