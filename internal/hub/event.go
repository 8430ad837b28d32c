package hub

import "github.com/roach88/cuesheet/internal/show"

// EventType names an event on the wire.
type EventType string

const (
	TypeStateUpdate    EventType = "state_update"
	TypeCueCreated     EventType = "cue_created"
	TypeCueUpdated     EventType = "cue_updated"
	TypeCueDeleted     EventType = "cue_deleted"
	TypeCameraUpdated  EventType = "camera_updated"
	TypeSettingUpdated EventType = "setting_updated"
	TypeDataCleared    EventType = "data_cleared"
	TypePing           EventType = "ping"
)

// Event is one message pushed to clients. Only the fields relevant to Type
// are set.
type Event struct {
	Type EventType `json:"type"`

	// Seq orders broadcasts. Zero for pings.
	Seq int64 `json:"seq,omitempty"`

	State        *show.State `json:"state,omitempty"`
	CueID        int64       `json:"cue_id,omitempty"`
	CameraNumber int         `json:"camera_number,omitempty"`
	Key          string      `json:"key,omitempty"`
	Value        *string     `json:"value,omitempty"`
}

// StateUpdate carries a full playback snapshot.
func StateUpdate(state show.State) Event {
	return Event{Type: TypeStateUpdate, State: &state}
}

// CueCreated announces a new cue.
func CueCreated(cueID int64) Event {
	return Event{Type: TypeCueCreated, CueID: cueID}
}

// CueUpdated announces an edit to a cue's text or notes.
func CueUpdated(cueID int64) Event {
	return Event{Type: TypeCueUpdated, CueID: cueID}
}

// CueDeleted announces a removed cue.
func CueDeleted(cueID int64) Event {
	return Event{Type: TypeCueDeleted, CueID: cueID}
}

// CameraUpdated announces a change to one camera assignment.
func CameraUpdated(cueID int64, camera int) Event {
	return Event{Type: TypeCameraUpdated, CueID: cueID, CameraNumber: camera}
}

// SettingUpdated announces a settings write.
func SettingUpdated(key, value string) Event {
	return Event{Type: TypeSettingUpdated, Key: key, Value: &value}
}

// DataCleared announces a full wipe.
func DataCleared() Event {
	return Event{Type: TypeDataCleared}
}

// PingEvent is the heartbeat message.
func PingEvent() Event {
	return Event{Type: TypePing}
}
