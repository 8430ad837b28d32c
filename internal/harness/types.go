package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/cuesheet/internal/hub"
)

// OpConnect labels the snapshot sent when the trace connection registers.
const OpConnect = "connect"

// TraceEvent is one broadcast received by the trace connection, tagged with
// the flow step that caused it. Step 0 is the connect snapshot.
type TraceEvent struct {
	Step  int       `json:"step"`
	Op    string    `json:"op"`
	Event hub.Event `json:"event"`
}

// String renders the event as one golden trace line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "step=%d op=%s seq=%d type=%s", e.Step, e.Op, e.Event.Seq, e.Event.Type)

	ev := e.Event
	switch ev.Type {
	case hub.TypeStateUpdate:
		if ev.State != nil && ev.State.Cue != nil {
			fmt.Fprintf(&b, " current=%d cameras=%d", ev.State.Cue.SequenceNumber, len(ev.State.Cameras))
		} else {
			b.WriteString(" current=unset")
		}
	case hub.TypeCueCreated, hub.TypeCueUpdated, hub.TypeCueDeleted:
		fmt.Fprintf(&b, " cue=%d", ev.CueID)
	case hub.TypeCameraUpdated:
		fmt.Fprintf(&b, " cue=%d camera=%d", ev.CueID, ev.CameraNumber)
	case hub.TypeSettingUpdated:
		value := ""
		if ev.Value != nil {
			value = *ev.Value
		}
		fmt.Fprintf(&b, " key=%s value=%q", ev.Key, value)
	}
	return b.String()
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step outcome and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every broadcast in order, starting with the connect
	// snapshot.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// FlowEvents returns the trace without the connect snapshot.
func (r *Result) FlowEvents() []TraceEvent {
	out := make([]TraceEvent, 0, len(r.Trace))
	for _, e := range r.Trace {
		if e.Step > 0 {
			out = append(out, e)
		}
	}
	return out
}

// TraceText renders the trace as golden file content.
func (r *Result) TraceText(name string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	for _, e := range r.Trace {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
