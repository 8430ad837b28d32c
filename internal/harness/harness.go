package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
	"github.com/roach88/cuesheet/internal/testutil"
)

// traceConnID is the id of the connection that records the trace.
const traceConnID = "trace"

// Harness is the test execution engine for one scenario run.
type Harness struct {
	ctrl   *control.Controller
	sink   *testutil.RecordingSink
	result *Result
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, so cue
// ids and broadcast sequence numbers are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Import the setup script
// 3. Register the trace connection (step 0 snapshot)
// 4. Execute flow steps with expect validation
// 5. Evaluate assertions and return the result
//
// The returned error covers infrastructure failures only. A step or
// assertion that does not match is recorded in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := control.New(st, control.WithLogger(logger))

	if len(scenario.Setup) > 0 {
		if _, err := ctrl.Import(ctx, importCues(scenario.Setup)); err != nil {
			return nil, fmt.Errorf("failed to execute setup: %w", err)
		}
	}

	h := &Harness{
		ctrl:   ctrl,
		sink:   testutil.NewRecordingSink(traceConnID),
		result: NewResult(),
	}
	if err := ctrl.Hub().Register(ctx, h.sink); err != nil {
		return nil, fmt.Errorf("failed to register trace connection: %w", err)
	}
	h.collect(0, OpConnect)

	for i, step := range scenario.Flow {
		n := i + 1
		tr, err := h.execute(ctx, step)
		h.collect(n, step.Op)
		for _, msg := range checkExpect(step, tr, err) {
			h.result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.Op, msg))
		}
	}

	for _, msg := range EvaluateAssertions(ctx, h.result, scenario.Assertions, ctrl) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// collect moves everything the trace connection received into the result.
// Broadcasts are synchronous, so all events of a step have arrived by now.
func (h *Harness) collect(step int, op string) {
	for _, ev := range h.sink.Events() {
		h.result.Trace = append(h.result.Trace, TraceEvent{Step: step, Op: op, Event: ev})
	}
	h.sink.Reset()
}

// execute runs one step. The transition is non-nil for playback ops that
// succeeded.
func (h *Harness) execute(ctx context.Context, step Step) (*playback.Transition, error) {
	switch step.Op {
	case OpAdvance:
		return transition(h.ctrl.Advance(ctx))
	case OpPrevious:
		return transition(h.ctrl.Previous(ctx))
	case OpGoto:
		return transition(h.ctrl.Goto(ctx, step.Cue))
	case OpReset:
		return transition(h.ctrl.Reset(ctx))
	case OpClear:
		return transition(h.ctrl.Clear(ctx))
	case OpImport:
		_, err := h.ctrl.Import(ctx, importCues(step.Cues))
		return nil, err
	case OpSetting:
		return nil, h.ctrl.SetSetting(ctx, step.Key, step.Value)
	case OpInsert:
		at, err := h.placement(ctx, step)
		if err != nil {
			return nil, err
		}
		_, err = h.ctrl.InsertCue(ctx, at, show.CueContent{LineText: step.Text, Notes: step.Notes})
		return nil, err
	}

	cueID, err := h.cueAt(ctx, step.Cue)
	if err != nil {
		return nil, err
	}
	switch step.Op {
	case OpUpdate:
		return nil, h.ctrl.UpdateCue(ctx, cueID, show.CueContent{LineText: step.Text, Notes: step.Notes})
	case OpDelete:
		return nil, h.ctrl.DeleteCue(ctx, cueID)
	case OpCamera:
		shot := show.Shot{Subject: step.Subject, ShotType: step.ShotType, Notes: step.Notes}
		return nil, h.ctrl.UpsertCamera(ctx, cueID, step.Camera, shot)
	case OpRemoveCamera:
		return nil, h.ctrl.DeleteCamera(ctx, cueID, step.Camera)
	case OpToggleTake:
		_, err := h.ctrl.ToggleExpectedTake(ctx, cueID, step.Camera)
		return nil, err
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func transition(tr playback.Transition, err error) (*playback.Transition, error) {
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func (h *Harness) placement(ctx context.Context, step Step) (sequencer.Placement, error) {
	if step.Position == "" {
		return sequencer.AtEnd(), nil
	}
	pos, err := sequencer.ParsePosition(step.Position)
	if err != nil {
		return sequencer.Placement{}, err
	}
	at := sequencer.Placement{Position: pos}
	if pos.NeedsTarget() {
		if at.Target, err = h.cueAt(ctx, step.Target); err != nil {
			return sequencer.Placement{}, err
		}
	}
	return at, nil
}

// cueAt resolves a sequence number in the active script to a cue id.
func (h *Harness) cueAt(ctx context.Context, seq int) (int64, error) {
	cues, err := h.ctrl.AllCues(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range cues {
		if c.SequenceNumber == seq {
			return c.ID, nil
		}
	}
	return 0, show.NotFound("no cue at sequence %d", seq)
}

// checkExpect compares a step outcome with its expect clause.
func checkExpect(step Step, tr *playback.Transition, err error) []string {
	e := step.Expect
	if e == nil || e.Error == "" {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
	}
	if e == nil {
		return nil
	}

	if e.Error != "" {
		if err == nil {
			return []string{fmt.Sprintf("expected error %s, got success", e.Error)}
		}
		if got := show.CodeOf(err); string(got) != e.Error {
			return []string{fmt.Sprintf("expected error %s, got %v", e.Error, err)}
		}
		return nil
	}

	var msgs []string
	if tr == nil {
		return msgs
	}
	if e.Moved != nil && tr.Moved != *e.Moved {
		msgs = append(msgs, fmt.Sprintf("expected moved=%t, got moved=%t", *e.Moved, tr.Moved))
	}
	if e.Reason != "" && tr.Reason != e.Reason {
		msgs = append(msgs, fmt.Sprintf("expected reason %q, got %q", e.Reason, tr.Reason))
	}
	return msgs
}
