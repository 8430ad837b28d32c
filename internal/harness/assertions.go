package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cuesheet/internal/control"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the controller's final
// state and the result's trace. Returns one message per failed assertion.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, ctrl *control.Controller) []string {
	var msgs []string
	for i, a := range assertions {
		if err := evaluate(ctx, result, a, ctrl); err != nil {
			msgs = append(msgs, fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}
	return msgs
}

func evaluate(ctx context.Context, result *Result, a Assertion, ctrl *control.Controller) error {
	switch a.Type {
	case AssertCueOrder:
		return assertCueOrder(ctx, a, ctrl)
	case AssertCurrentCue:
		return assertCurrentCue(ctx, a, ctrl)
	case AssertCameraView:
		return assertCameraView(ctx, a, ctrl)
	case AssertEvents:
		return assertEvents(result.FlowEvents(), a)
	case AssertEventCount:
		return assertEventCount(result.FlowEvents(), a)
	case AssertSetting:
		return assertSetting(ctx, a, ctrl)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertCueOrder checks the line texts in order and that sequence numbers
// run 1..N without gaps.
func assertCueOrder(ctx context.Context, a Assertion, ctrl *control.Controller) error {
	cues, err := ctrl.AllCues(ctx)
	if err != nil {
		return fmt.Errorf("read cues: %w", err)
	}

	texts := make([]string, len(cues))
	for i, c := range cues {
		texts[i] = c.LineText
		if c.SequenceNumber != i+1 {
			return &AssertionError{
				Type:     AssertCueOrder,
				Expected: fmt.Sprintf("cue %d at sequence %d", c.ID, i+1),
				Actual:   fmt.Sprintf("sequence %d", c.SequenceNumber),
			}
		}
	}
	if !slices.Equal(texts, a.Texts) {
		return &AssertionError{
			Type:     AssertCueOrder,
			Expected: fmt.Sprintf("%q", a.Texts),
			Actual:   fmt.Sprintf("%q", texts),
		}
	}
	return nil
}

func assertCurrentCue(ctx context.Context, a Assertion, ctrl *control.Controller) error {
	state, err := ctrl.State(ctx)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	seq, text := 0, ""
	if state.Cue != nil {
		seq, text = state.Cue.SequenceNumber, state.Cue.LineText
	}
	if seq != *a.Cue {
		return &AssertionError{
			Type:     AssertCurrentCue,
			Expected: fmt.Sprintf("current cue at sequence %d", *a.Cue),
			Actual:   fmt.Sprintf("sequence %d", seq),
		}
	}
	if a.Text != "" && text != a.Text {
		return &AssertionError{
			Type:     AssertCurrentCue,
			Expected: fmt.Sprintf("current cue text %q", a.Text),
			Actual:   fmt.Sprintf("%q", text),
		}
	}
	return nil
}

// assertCameraView checks whichever of the window lists and shot markers
// the assertion sets.
func assertCameraView(ctx context.Context, a Assertion, ctrl *control.Controller) error {
	view, err := ctrl.CameraView(ctx, a.Camera)
	if err != nil {
		return fmt.Errorf("read camera %d view: %w", a.Camera, err)
	}

	var window, assigned, preview []int
	next, last := 0, 0
	for _, c := range view.Cues {
		window = append(window, c.SequenceNumber)
		if c.Assigned() {
			assigned = append(assigned, c.SequenceNumber)
		}
		if c.IsPreview {
			preview = append(preview, c.SequenceNumber)
		}
		if c.IsNextShot {
			next = c.SequenceNumber
		}
		if c.IsLastShot {
			last = c.SequenceNumber
		}
	}

	checks := []struct {
		name       string
		want, got  []int
		configured bool
	}{
		{"window", a.Window, window, a.Window != nil},
		{"assigned", a.Assigned, assigned, a.Assigned != nil},
		{"preview", a.Preview, preview, a.Preview != nil},
	}
	for _, c := range checks {
		if c.configured && !equalInts(c.want, c.got) {
			return &AssertionError{
				Type:     AssertCameraView,
				Expected: fmt.Sprintf("camera %d %s %v", a.Camera, c.name, c.want),
				Actual:   fmt.Sprintf("%v", c.got),
			}
		}
	}
	if a.Next != nil && *a.Next != next {
		return &AssertionError{
			Type:     AssertCameraView,
			Expected: fmt.Sprintf("camera %d next shot at %d", a.Camera, *a.Next),
			Actual:   fmt.Sprintf("%d", next),
		}
	}
	if a.Last != nil && *a.Last != last {
		return &AssertionError{
			Type:     AssertCameraView,
			Expected: fmt.Sprintf("camera %d last shot at %d", a.Camera, *a.Last),
			Actual:   fmt.Sprintf("%d", last),
		}
	}
	return nil
}

// equalInts treats nil and empty as equal so `preview: []` matches no
// preview.
func equalInts(a, b []int) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}

// assertEvents checks the exact order of broadcast types.
func assertEvents(trace []TraceEvent, a Assertion) error {
	got := make([]string, len(trace))
	for i, e := range trace {
		got[i] = string(e.Event.Type)
	}
	if !slices.Equal(got, a.Events) {
		return &AssertionError{
			Type:     AssertEvents,
			Expected: fmt.Sprintf("%v", a.Events),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertEventCount checks the event type appears exactly the specified
// number of times.
func assertEventCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, e := range trace {
		if string(e.Event.Type) == a.Event {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%s exactly %d times", a.Event, a.Count),
			Actual:   fmt.Sprintf("%d times", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertSetting(ctx context.Context, a Assertion, ctrl *control.Controller) error {
	value, ok, err := ctrl.Setting(ctx, a.Key)
	if err != nil {
		return fmt.Errorf("read setting %s: %w", a.Key, err)
	}
	if !ok || value != a.Value {
		actual := fmt.Sprintf("%q", value)
		if !ok {
			actual = "not set"
		}
		return &AssertionError{
			Type:     AssertSetting,
			Expected: fmt.Sprintf("%s = %q", a.Key, a.Value),
			Actual:   actual,
		}
	}
	return nil
}
