package interchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/cuesheet/internal/show"
)

// Column names.
const (
	ColCueNumber    = "Cue Number"
	ColCueText      = "Cue Text"
	ColNotes        = "Notes"
	ColCameraNumber = "Camera Number"
	ColSubject      = "Subject"
	ColShotType     = "Shot Type"
	ColCameraNotes  = "Camera Notes"
)

// Header is the column order written by Write.
var Header = []string{
	ColCueNumber, ColCueText, ColNotes,
	ColCameraNumber, ColSubject, ColShotType, ColCameraNotes,
}

// requiredColumns must be present in an imported header. The remaining
// columns default to empty.
var requiredColumns = []string{ColCueNumber, ColCueText, ColCameraNumber, ColSubject}

// MaxReportedProblems caps the problem list of a rejected import.
const MaxReportedProblems = 20

// Parse reads an import file. Cues come back ordered by ascending cue
// number; the numbers themselves are discarded since the store renumbers
// 1..N.
//
// Any malformed row rejects the whole file with a VALIDATION_ERROR listing
// at most MaxReportedProblems problems (plus "...and more").
func Parse(r io.Reader) ([]show.ImportCue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, show.Validation("The CSV file is empty")
	}
	if err != nil {
		return nil, show.Validation(fmt.Sprintf("unreadable CSV header: %v", err))
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, show.Validation(fmt.Sprintf("Missing required column: %s", name))
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		problems []string
		byNumber = make(map[int]*show.ImportCue)
		numbers  []int
		seen     = make(map[[2]int]bool)
	)

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}
		if isBlank(rec) {
			continue
		}

		cueField := field(rec, ColCueNumber)
		if cueField == "" {
			problems = append(problems, fmt.Sprintf("Line %d: Missing Cue Number", line))
			continue
		}
		cueNum, err := strconv.Atoi(cueField)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Line %d: Invalid number format in Cue or Camera column", line))
			continue
		}
		if cueNum <= 0 {
			problems = append(problems, fmt.Sprintf("Line %d: Cue Number must be positive", line))
			continue
		}

		cue, ok := byNumber[cueNum]
		if !ok {
			cue = &show.ImportCue{
				LineText: field(rec, ColCueText),
				Notes:    field(rec, ColNotes),
			}
			byNumber[cueNum] = cue
			numbers = append(numbers, cueNum)
		}

		camField := field(rec, ColCameraNumber)
		if camField == "" {
			continue
		}
		camNum, err := strconv.Atoi(camField)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Line %d: Invalid number format in Cue or Camera column", line))
			continue
		}
		if camNum <= 0 {
			problems = append(problems, fmt.Sprintf("Line %d: Camera Number must be positive", line))
			continue
		}

		key := [2]int{cueNum, camNum}
		if seen[key] {
			problems = append(problems, fmt.Sprintf(
				"Line %d: Duplicate assignment - Cue %d, Camera %d already exists in this file", line, cueNum, camNum))
			continue
		}
		seen[key] = true

		subject := field(rec, ColSubject)
		if subject == "" {
			problems = append(problems, fmt.Sprintf("Line %d: Missing Subject for Camera %d", line, camNum))
			continue
		}

		cue.Cameras = append(cue.Cameras, show.ImportShot{
			CameraNumber: camNum,
			Shot: show.Shot{
				Subject:  subject,
				ShotType: field(rec, ColShotType),
				Notes:    field(rec, ColCameraNotes),
			},
		})
	}

	if len(problems) > 0 {
		if len(problems) > MaxReportedProblems {
			problems = append(problems[:MaxReportedProblems:MaxReportedProblems], "...and more")
		}
		return nil, show.Validation("Validation failed", problems...)
	}
	if len(numbers) == 0 {
		return nil, show.Validation("The CSV file is empty")
	}

	sort.Ints(numbers)
	cues := make([]show.ImportCue, 0, len(numbers))
	for _, n := range numbers {
		c := *byNumber[n]
		sort.SliceStable(c.Cameras, func(i, j int) bool {
			return c.Cameras[i].CameraNumber < c.Cameras[j].CameraNumber
		})
		cues = append(cues, c)
	}
	return cues, nil
}

// Write emits cues in the interchange format, header first.
func Write(w io.Writer, cues []show.CueWithCameras) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range cues {
		seq := strconv.Itoa(c.SequenceNumber)
		if len(c.Cameras) == 0 {
			if err := cw.Write([]string{seq, c.LineText, c.Notes, "", "", "", ""}); err != nil {
				return fmt.Errorf("write cue %d: %w", c.SequenceNumber, err)
			}
			continue
		}
		for _, a := range c.Cameras {
			rec := []string{
				seq, c.LineText, c.Notes,
				strconv.Itoa(a.CameraNumber), a.Subject, a.ShotType, a.Notes,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write cue %d camera %d: %w", c.SequenceNumber, a.CameraNumber, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
