// Package harness runs scripted show scenarios against a real controller.
//
// A scenario imports a starting script, drives the controller through a
// flow of steps (the same calls the HTTP and OSC surfaces make) and then
// asserts on the final cue order, the playback position, camera views and
// the broadcasts a connected client received.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  - text: Lights up
//	    cameras:
//	      - {camera: 1, subject: Host, shot_type: WS}
//	flow:
//	  - op: advance
//	  - op: goto
//	    cue: 9
//	    expect: {error: NOT_FOUND}
//	assertions:
//	  - type: current_cue
//	    cue: 2
//	  - type: camera_view
//	    camera: 1
//	    preview: [3]
//
// Steps address cues by sequence number as it stands when the step runs.
//
// # Assertion Types
//
//   - cue_order: line texts in order, with dense sequence numbers
//   - current_cue: current sequence number (0 for none) and optional text
//   - camera_view: window, assigned and preview sequence numbers, next and last shot
//   - events: exact broadcast types received during the flow
//   - event_count: how often one broadcast type was received
//   - setting: a stored setting value
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store, so cue ids and broadcast sequence
// numbers repeat exactly and the trace can be compared with a golden file.
//
// # Usage
//
//	result, err := harness.RunDir(ctx, "testdata/scenarios")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Failures {
//	    log.Println(f.Path, f.Errors)
//	}
package harness
