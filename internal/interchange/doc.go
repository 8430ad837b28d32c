// Package interchange reads and writes the tabular cue-sheet format.
//
// One row per (cue, camera) pair:
//
//	Cue Number,Cue Text,Notes,Camera Number,Subject,Shot Type,Camera Notes
//
// A cue without cameras is a single row with the camera columns empty.
// Rows sharing a cue number belong to the same cue; the first such row
// supplies the cue's text and notes.
//
// Parse validates the whole file before returning anything, so an import
// either has every row or none.
package interchange
