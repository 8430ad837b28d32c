package server

import (
	"net/http"

	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
)

type moveResponse struct {
	Success bool       `json:"success"`
	CueID   int64      `json:"cue_id,omitempty"`
	Message string     `json:"message,omitempty"`
	State   show.State `json:"state"`
}

func transitionBody(tr playback.Transition) moveResponse {
	return moveResponse{Success: tr.Moved, CueID: tr.CueID(), Message: tr.Reason, State: tr.State}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.ctrl.State(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleCueWindow(w http.ResponseWriter, r *http.Request) {
	before, err := queryInt(r, "before", -1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	after, err := queryInt(r, "after", -1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cues, err := s.ctrl.CueWindow(r.Context(), before, after)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cues)
}

func (s *Server) handleAllCues(w http.ResponseWriter, r *http.Request) {
	cues, err := s.ctrl.AllCues(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cues == nil {
		cues = []show.CueWithCameras{}
	}
	s.writeJSON(w, http.StatusOK, cues)
}

func (s *Server) handleGetCue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cue_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cue, err := s.ctrl.Cue(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cue)
}

type createCueRequest struct {
	LineText    string `json:"line_text"`
	Notes       string `json:"notes"`
	Position    string `json:"position"`
	TargetCueID int64  `json:"target_cue_id"`
}

func (s *Server) handleCreateCue(w http.ResponseWriter, r *http.Request) {
	var req createCueRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Position == "" {
		req.Position = string(sequencer.End)
	}
	pos, err := sequencer.ParsePosition(req.Position)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.ctrl.InsertCue(r.Context(),
		sequencer.Placement{Position: pos, Target: req.TargetCueID},
		show.CueContent{LineText: req.LineText, Notes: req.Notes},
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "cue_id": id})
}

func (s *Server) handleUpdateCue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cue_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var content show.CueContent
	if err := decodeJSON(r, &content); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ctrl.UpdateCue(r.Context(), id, content); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteCue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cue_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ctrl.DeleteCue(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	tr, err := s.ctrl.Advance(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transitionBody(tr))
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	tr, err := s.ctrl.Previous(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transitionBody(tr))
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	n, err := pathInt(r, "cue_number")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tr, err := s.ctrl.Goto(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transitionBody(tr))
}

func (s *Server) handleResetPosition(w http.ResponseWriter, r *http.Request) {
	tr, err := s.ctrl.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transitionBody(tr))
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ctrl.Clear(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "All data cleared successfully"})
}
