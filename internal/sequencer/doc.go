// Package sequencer owns the ordering of cues within a script.
//
// Sequence numbers are dense: a script with N cues numbers them 1..N. Insert
// shifts every cue at or after the target position up by one before writing
// the new row; Delete removes the row and shifts every later cue down by one.
// Each operation runs in a single store transaction, so the density
// invariant holds at every commit point.
//
// No other package writes sequence_number.
package sequencer
