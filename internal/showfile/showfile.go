package showfile

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/cuesheet/internal/show"
)

//go:embed schema.cue
var schemaSource string

// Show is a decoded show file.
type Show struct {
	// Name is the script display name; empty when the file omits it.
	Name string

	// Cues are in file order, ready for control.Import.
	Cues []show.ImportCue
}

type document struct {
	Name string     `json:"name"`
	Cues []cueEntry `json:"cues"`
}

type cueEntry struct {
	Text    string      `json:"text"`
	Notes   string      `json:"notes"`
	Cameras []shotEntry `json:"cameras"`
}

type shotEntry struct {
	Camera       int    `json:"camera"`
	Subject      string `json:"subject"`
	ShotType     string `json:"shot_type"`
	Notes        string `json:"notes"`
	ExpectedTake bool   `json:"expected_take"`
}

// Load reads and parses the show file at path.
func Load(path string) (*Show, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show file: %w", err)
	}
	return Parse(path, src)
}

// Parse validates src against the #Show schema and converts it.
// filename is only used in error positions.
func Parse(filename string, src []byte) (*Show, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile show schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Show"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, show.Validation("show file does not compile", problems(err)...)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, show.Validation("show file does not match schema", problems(err)...)
	}

	var doc document
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode show file: %w", err)
	}
	return doc.convert(), nil
}

func (d document) convert() *Show {
	s := &Show{
		Name: show.NormalizeText(d.Name),
		Cues: make([]show.ImportCue, 0, len(d.Cues)),
	}
	for _, c := range d.Cues {
		cue := show.ImportCue{LineText: c.Text, Notes: c.Notes}
		for _, sh := range c.Cameras {
			cue.Cameras = append(cue.Cameras, show.ImportShot{
				CameraNumber: sh.Camera,
				Shot: show.Shot{
					Subject:  sh.Subject,
					ShotType: sh.ShotType,
					Notes:    sh.Notes,
				},
				ExpectedTake: sh.ExpectedTake,
			})
		}
		s.Cues = append(s.Cues, cue)
	}
	return s
}

// problems flattens a CUE error list into "file:line:col: message" lines.
func problems(err error) []string {
	var out []string
	for _, e := range errors.Errors(err) {
		msg := e.Error()
		if pos := errors.Positions(e); len(pos) > 0 && pos[0].IsValid() {
			p := pos[0]
			msg = fmt.Sprintf("%s:%d:%d: %s", p.Filename(), p.Line(), p.Column(), msg)
		}
		out = append(out, msg)
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
