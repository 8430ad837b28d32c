package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/interchange"
	"github.com/roach88/cuesheet/internal/showfile"
)

// TransferOptions holds flags for import, export and load.
type TransferOptions struct {
	*RootOptions
	DBOptions
	Output string // export only
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the script with a CSV cue sheet",
		Long: `Replace every cue and camera assignment with the contents of a CSV file.

The file needs the columns Cue Number, Cue Text, Camera Number and Subject;
Notes, Shot Type and Camera Notes are optional. Rows with the same cue
number merge into one cue. The whole file is checked first: if any row is
invalid nothing is changed and every problem is listed.

Playback moves to the first cue afterwards.

Example:
  cuesheet import --db ./show.db ./rundown.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runImport(opts *TransferOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return out.Fail("failed to read CSV", err)
	}
	cues, err := interchange.Parse(bytes.NewReader(data))
	if err != nil {
		return out.Fail("import rejected", err)
	}

	s, err := openSession(opts.RootOptions, &opts.DBOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.ctrl.Import(cmd.Context(), cues)
	if err != nil {
		return out.Fail("import failed", err)
	}
	return out.Success(result, importSummary(result))
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <show.cue>",
		Short: "Replace the script with a CUE show file",
		Long: `Replace every cue and camera assignment with a show defined in CUE.

The file is checked against the show schema before anything is written.
If it sets a name, that becomes the script display name.

Example:
  show.cue:
    name: "Spring Gala"
    cues: [
      {text: "Lights up", cameras: [{camera: 1, subject: "Host", shot_type: "WS"}]},
      {text: "Welcome"},
    ]

  cuesheet load --db ./show.db ./show.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runLoad(opts *TransferOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	def, err := showfile.Load(path)
	if err != nil {
		return out.Fail("show file rejected", err)
	}

	s, err := openSession(opts.RootOptions, &opts.DBOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.ctrl.ImportNamed(cmd.Context(), def.Name, def.Cues)
	if err != nil {
		return out.Fail("load failed", err)
	}
	return out.Success(result, importSummary(result))
}

func importSummary(r control.ImportResult) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d cues with %d camera assignments.\n", r.Cues, r.Assignments)
	}
}

// ExportResult describes an export written to a file.
type ExportResult struct {
	Path string `json:"path"`
	Cues int    `json:"cues"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the script as a CSV cue sheet",
		Long: `Write every cue and camera assignment as CSV, one row per camera
assignment and one row for each cue without cameras. The output can be
imported again unchanged.

Example:
  cuesheet export --db ./show.db > rundown.csv
  cuesheet export --db ./show.db --out rundown.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runExport(opts *TransferOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(opts.RootOptions, &opts.DBOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cues, err := s.ctrl.Export(cmd.Context())
	if err != nil {
		return out.Fail("export failed", err)
	}

	if opts.Output == "" {
		if err := interchange.Write(cmd.OutOrStdout(), cues); err != nil {
			return WrapExitError(ExitCommandError, "failed to write CSV", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := interchange.Write(&buf, cues); err != nil {
		return WrapExitError(ExitCommandError, "failed to write CSV", err)
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return out.Fail("failed to write export", err)
	}

	result := ExportResult{Path: opts.Output, Cues: len(cues)}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "Exported %d cues to %s\n", result.Cues, result.Path)
	})
}
