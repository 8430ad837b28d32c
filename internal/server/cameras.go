package server

import (
	"net/http"

	"github.com/roach88/cuesheet/internal/show"
)

func (s *Server) handleCameraView(w http.ResponseWriter, r *http.Request) {
	camera, err := pathInt(r, "camera_number")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.ctrl.CameraView(r.Context(), camera)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCameras(w http.ResponseWriter, r *http.Request) {
	counts, err := s.ctrl.Cameras(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if counts == nil {
		counts = []show.CameraCount{}
	}
	s.writeJSON(w, http.StatusOK, counts)
}

// assignmentPath reads the cue id and camera number of a camera route.
func assignmentPath(r *http.Request) (int64, int, error) {
	cueID, err := pathID(r, "cue_id")
	if err != nil {
		return 0, 0, err
	}
	camera, err := pathInt(r, "camera_number")
	if err != nil {
		return 0, 0, err
	}
	return cueID, camera, nil
}

func (s *Server) handleUpsertCamera(w http.ResponseWriter, r *http.Request) {
	cueID, camera, err := assignmentPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var shot show.Shot
	if err := decodeJSON(r, &shot); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ctrl.UpsertCamera(r.Context(), cueID, camera, shot); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteCamera(w http.ResponseWriter, r *http.Request) {
	cueID, camera, err := assignmentPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ctrl.DeleteCamera(r.Context(), cueID, camera); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleToggleTake(w http.ResponseWriter, r *http.Request) {
	cueID, camera, err := assignmentPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	take, err := s.ctrl.ToggleExpectedTake(r.Context(), cueID, camera)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true, "expected_take": take})
}

type settingBody struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	value, ok, err := s.ctrl.Setting(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body := settingBody{Key: key}
	if ok {
		body.Value = &value
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Value *string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Value == nil {
		s.writeError(w, r, show.Validation("Missing value parameter"))
		return
	}
	if err := s.ctrl.SetSetting(r.Context(), key, *req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	value, _, err := s.ctrl.Setting(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "key": key, "value": value})
}
