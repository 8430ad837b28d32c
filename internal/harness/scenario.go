package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
)

// Scenario is one scripted show run.
// Setup imports a starting script, Flow drives the controller step by step
// and Assertions check the final state and the broadcast trace.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden trace.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup is imported before the connection is opened, so it does not
	// appear in the trace. Playback starts at its first cue.
	Setup []CueDef `yaml:"setup,omitempty"`

	// Flow contains the steps, run in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// CueDef is a cue of an imported script.
type CueDef struct {
	Text    string    `yaml:"text"`
	Notes   string    `yaml:"notes,omitempty"`
	Cameras []ShotDef `yaml:"cameras,omitempty"`
}

// ShotDef is a camera assignment of an imported cue.
type ShotDef struct {
	Camera       int    `yaml:"camera"`
	Subject      string `yaml:"subject"`
	ShotType     string `yaml:"shot_type,omitempty"`
	Notes        string `yaml:"notes,omitempty"`
	ExpectedTake bool   `yaml:"expected_take,omitempty"`
}

// Step is one operation of the flow. Cues are addressed by sequence number
// at the time the step runs, never by id.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Cue is the sequence number the op acts on (goto, update, delete and
	// the camera ops).
	Cue int `yaml:"cue,omitempty"`

	Text  string `yaml:"text,omitempty"`
	Notes string `yaml:"notes,omitempty"`

	// Position and Target place an inserted cue. Target is a sequence
	// number. Position defaults to end.
	Position string `yaml:"position,omitempty"`
	Target   int    `yaml:"target,omitempty"`

	Camera   int    `yaml:"camera,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	ShotType string `yaml:"shot_type,omitempty"`

	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`

	// Cues is the script for an import step.
	Cues []CueDef `yaml:"cues,omitempty"`

	// Expect checks the outcome. If nil the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Error is the expected error code, e.g. NOT_FOUND.
	Error string `yaml:"error,omitempty"`

	// Moved and Reason apply to playback ops.
	Moved  *bool  `yaml:"moved,omitempty"`
	Reason string `yaml:"reason,omitempty"`
}

// Step ops.
const (
	OpInsert       = "insert"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpAdvance      = "advance"
	OpPrevious     = "previous"
	OpGoto         = "goto"
	OpReset        = "reset"
	OpClear        = "clear"
	OpImport       = "import"
	OpCamera       = "camera"
	OpRemoveCamera = "remove_camera"
	OpToggleTake   = "toggle_take"
	OpSetting      = "setting"
)

var playbackOps = []string{OpAdvance, OpPrevious, OpGoto, OpReset, OpClear}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Texts is the expected line text of every cue in order (cue_order).
	Texts []string `yaml:"texts,omitempty"`

	// Cue is the expected current sequence number, 0 for none (current_cue).
	Cue *int `yaml:"cue,omitempty"`

	// Text optionally checks the current cue's line text (current_cue).
	Text string `yaml:"text,omitempty"`

	// Camera selects the view (camera_view). Window, Assigned and Preview
	// list sequence numbers; Next and Last are a sequence number or 0.
	Camera   int   `yaml:"camera,omitempty"`
	Window   []int `yaml:"window,omitempty"`
	Assigned []int `yaml:"assigned,omitempty"`
	Preview  []int `yaml:"preview,omitempty"`
	Next     *int  `yaml:"next,omitempty"`
	Last     *int  `yaml:"last,omitempty"`

	// Events is the exact order of broadcast types during the flow (events).
	Events []string `yaml:"events,omitempty"`

	// Event and Count check how often one broadcast type occurred
	// (event_count).
	Event string `yaml:"event,omitempty"`
	Count int    `yaml:"count,omitempty"`

	// Key and Value check a stored setting (setting).
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`
}

// Assertion types.
const (
	AssertCueOrder   = "cue_order"
	AssertCurrentCue = "current_cue"
	AssertCameraView = "camera_view"
	AssertEvents     = "events"
	AssertEventCount = "event_count"
	AssertSetting    = "setting"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Flow) == 0 {
		return errors.New("flow must have at least one step")
	}

	var errs []error
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			errs = append(errs, fmt.Errorf("flow step %d (%s): %w", i+1, step.Op, err))
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			errs = append(errs, fmt.Errorf("assertion %d (%s): %w", i+1, a.Type, err))
		}
	}
	return errors.Join(errs...)
}

func validateStep(step Step) error {
	switch step.Op {
	case "":
		return errors.New("op is required")
	case OpInsert:
		if step.Position != "" {
			p, err := sequencer.ParsePosition(step.Position)
			if err != nil {
				return err
			}
			if p.NeedsTarget() && step.Target <= 0 {
				return fmt.Errorf("position %s requires target", p)
			}
		}
	case OpUpdate, OpDelete, OpGoto:
		if step.Cue <= 0 {
			return errors.New("cue is required")
		}
	case OpCamera, OpRemoveCamera, OpToggleTake:
		if step.Cue <= 0 {
			return errors.New("cue is required")
		}
		if step.Camera <= 0 {
			return errors.New("camera is required")
		}
	case OpSetting:
		if step.Key == "" {
			return errors.New("key is required")
		}
	case OpImport:
		if len(step.Cues) == 0 {
			return errors.New("cues is required")
		}
	case OpAdvance, OpPrevious, OpReset, OpClear:
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if e := step.Expect; e != nil {
		if e.Error != "" && (e.Moved != nil || e.Reason != "") {
			return errors.New("expect cannot combine error with moved or reason")
		}
		if (e.Moved != nil || e.Reason != "") && !slices.Contains(playbackOps, step.Op) {
			return errors.New("moved and reason only apply to playback ops")
		}
		if e.Error != "" && !knownCode(e.Error) {
			return fmt.Errorf("unknown error code %q", e.Error)
		}
	}
	return nil
}

func knownCode(code string) bool {
	switch show.ErrorCode(code) {
	case show.CodeNotFound, show.CodeInvalidPosition, show.CodeNoCues,
		show.CodeValidation, show.CodeTransportFailure, show.CodeUnauthorized:
		return true
	}
	return false
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case "":
		return errors.New("type is required")
	case AssertCueOrder:
		if a.Texts == nil {
			return errors.New("texts is required")
		}
	case AssertCurrentCue:
		if a.Cue == nil {
			return errors.New("cue is required")
		}
	case AssertCameraView:
		if a.Camera <= 0 {
			return errors.New("camera is required")
		}
	case AssertEvents:
		if a.Events == nil {
			return errors.New("events is required")
		}
	case AssertEventCount:
		if a.Event == "" {
			return errors.New("event is required")
		}
		if a.Count < 0 {
			return errors.New("count cannot be negative")
		}
	case AssertSetting:
		if a.Key == "" {
			return errors.New("key is required")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// importCues converts cue definitions to an import.
func importCues(defs []CueDef) []show.ImportCue {
	cues := make([]show.ImportCue, len(defs))
	for i, d := range defs {
		cues[i] = show.ImportCue{LineText: d.Text, Notes: d.Notes}
		for _, s := range d.Cameras {
			cues[i].Cameras = append(cues[i].Cameras, show.ImportShot{
				CameraNumber: s.Camera,
				Shot:         show.Shot{Subject: s.Subject, ShotType: s.ShotType, Notes: s.Notes},
				ExpectedTake: s.ExpectedTake,
			})
		}
	}
	return cues
}
