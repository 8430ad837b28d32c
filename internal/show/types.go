package show

// DefaultScriptID is the script created at initialization.
const DefaultScriptID int64 = 1

// DefaultDisplayName is used when neither the script_name setting nor the
// script row carries a name.
const DefaultDisplayName = "Camera CueSheet"

// Setting keys understood by the core.
const (
	SettingScriptName   = "script_name"
	SettingPasswordHash = "auth_password_hash"
	SettingLockPrefix   = "require_auth_"
)

// Script is a show script. Exactly one script is active at a time.
type Script struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Cue is a single ordered moment in a script.
type Cue struct {
	ID             int64  `json:"id"`
	ScriptID       int64  `json:"script_id"`
	SequenceNumber int    `json:"sequence_number"`
	LineText       string `json:"line_text"`
	Notes          string `json:"notes"`
}

// CueContent is the editable part of a cue.
type CueContent struct {
	LineText string `json:"line_text"`
	Notes    string `json:"notes"`
}

// CameraAssignment is the instruction for one camera at one cue.
// Keyed by (CueID, CameraNumber).
type CameraAssignment struct {
	CueID        int64  `json:"cue_id"`
	CameraNumber int    `json:"camera_number"`
	Subject      string `json:"subject"`
	ShotType     string `json:"shot_type"`
	Notes        string `json:"notes"`
	ExpectedTake bool   `json:"expected_take"`
}

// Shot is the editable part of a camera assignment.
type Shot struct {
	Subject  string `json:"subject"`
	ShotType string `json:"shot_type"`
	Notes    string `json:"notes"`
}

// CueWithCameras is a cue together with all its camera assignments,
// ordered by camera number.
type CueWithCameras struct {
	Cue
	IsCurrent bool               `json:"is_current"`
	Cameras   []CameraAssignment `json:"cameras"`
}

// Pointer is the raw playback pointer row.
type Pointer struct {
	ScriptID     int64
	CurrentCueID *int64
}

// IsSet reports whether a current cue is referenced.
func (p Pointer) IsSet() bool {
	return p.CurrentCueID != nil
}

// State is a consistent snapshot of the playback position: the current cue,
// its camera assignments and the script display name, all read in one
// transaction.
type State struct {
	ScriptID     int64              `json:"script_id"`
	ScriptName   string             `json:"script_name"`
	CurrentCueID *int64             `json:"current_cue_id"`
	Cue          *Cue               `json:"cue,omitempty"`
	Cameras      []CameraAssignment `json:"cameras"`
}

// CameraCue is one row of a camera's forward-looking view.
type CameraCue struct {
	CueID          int64  `json:"cue_id"`
	SequenceNumber int    `json:"sequence_number"`
	LineText       string `json:"line_text"`
	Notes          string `json:"notes"`

	// Assignment is nil when the camera has nothing to do at this cue.
	Assignment *CameraAssignment `json:"assignment,omitempty"`

	IsCurrent  bool `json:"is_current"`
	IsLastShot bool `json:"is_last_shot"`
	IsNextShot bool `json:"is_next_shot"`
	IsPreview  bool `json:"is_preview"`
}

// Assigned reports whether the camera has an assignment at this cue.
func (c CameraCue) Assigned() bool {
	return c.Assignment != nil
}

// CameraView is the projection served to a single camera display.
type CameraView struct {
	CameraNumber int         `json:"camera_number"`
	ScriptName   string      `json:"script_name"`
	Cues         []CameraCue `json:"cues"`
}

// CameraCount is the number of cues a camera has assignments at.
type CameraCount struct {
	CameraNumber    int `json:"camera_number"`
	AssignmentCount int `json:"assignment_count"`
}

// ImportCue is one cue of a bulk import, already validated.
// Cues are imported in slice order and renumbered 1..N.
type ImportCue struct {
	LineText string
	Notes    string
	Cameras  []ImportShot
}

// ImportShot is one camera assignment of a bulk import.
type ImportShot struct {
	CameraNumber int
	Shot
	ExpectedTake bool
}

// DeletedCue describes a cue removed by the sequencer.
type DeletedCue struct {
	CueID          int64
	ScriptID       int64
	SequenceNumber int
}
