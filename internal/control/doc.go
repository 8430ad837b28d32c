// Package control is the request surface core shared by the HTTP API, the
// OSC surface and the CLI.
//
// Each operation runs the matching sequencer, playback or store operation
// and, on success, publishes the resulting event to the hub:
//
//	Advance, Previous, Goto, Reset     -> state_update (when the pointer moved)
//	Clear                              -> data_cleared, state_update
//	InsertCue                          -> cue_created
//	UpdateCue                          -> cue_updated
//	DeleteCue                          -> cue_deleted (+ state_update if current)
//	UpsertCamera, DeleteCamera,
//	ToggleExpectedTake                 -> camera_updated
//	SetSetting                         -> setting_updated
//	Import                             -> state_update
//
// Failed operations publish nothing. Broadcast failures never turn a
// successful operation into an error.
package control
