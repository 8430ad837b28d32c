package server

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/interchange"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/showfile"
)

type importResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	CuesImported        int    `json:"cues_imported"`
	AssignmentsImported int    `json:"assignments_imported"`
}

func importBody(res control.ImportResult) importResponse {
	return importResponse{
		Success:             true,
		Message:             "Import successful",
		CuesImported:        res.Cues,
		AssignmentsImported: res.Assignments,
	}
}

// upload returns the request payload: the "file" part of a multipart form,
// or the raw body otherwise.
func upload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, show.Validation("missing upload field \"file\"")
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, show.Validation(fmt.Sprintf("read upload: %v", err))
	}
	return data, nil
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := upload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cues, err := interchange.Parse(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.ctrl.Import(r.Context(), cues)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importBody(res))
}

func (s *Server) handleImportShow(w http.ResponseWriter, r *http.Request) {
	data, err := upload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sf, err := showfile.Parse("upload.cue", data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.ctrl.ImportNamed(r.Context(), sf.Name, sf.Cues)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importBody(res))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	cues, err := s.ctrl.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := interchange.Write(&buf, cues); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cuesheet.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("write export", "error", err)
	}
}
