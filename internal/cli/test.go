package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cuesheet/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Golden string // golden trace directory
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run show scenarios",
		Long: `Run YAML show scenarios, each against a fresh in-memory database.

A scenario imports a script, drives playback and editing step by step and
checks the cue order, the current cue, camera views and the broadcasts a
connected display received. With --golden each broadcast trace is also
compared with <golden-dir>/<name>.golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  cuesheet test ./scenarios
  cuesheet test ./scenarios --filter "edit*"
  cuesheet test ./scenarios --golden ./golden --update
  cuesheet test ./scenarios --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare traces with golden files in this directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if opts.Update && opts.Golden == "" {
		return NewExitError(ExitCommandError, "--update requires --golden")
	}

	var suiteOpts []harness.SuiteOption
	if opts.Filter != "" {
		suiteOpts = append(suiteOpts, harness.WithFilter(opts.Filter))
	}
	if opts.Golden != "" {
		suiteOpts = append(suiteOpts, harness.WithGoldenDir(opts.Golden, opts.Update))
	}

	result, err := harness.RunDir(cmd.Context(), scenariosDir, suiteOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	out := newFormatter(opts.RootOptions, cmd)
	if !result.OK() {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if opts.Format == "json" {
			_ = out.Error("TEST_FAILED", msg, result)
		} else {
			writeSuiteText(out.Writer, result)
		}
		exitErr := NewExitError(ExitFailure, msg)
		exitErr.Reported = true
		return exitErr
	}

	return out.Success(result, func(w io.Writer) {
		writeSuiteText(w, result)
	})
}

func writeSuiteText(w io.Writer, result *harness.SuiteResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	failures := make(map[string][]string, len(result.Failures))
	for _, f := range result.Failures {
		failures[f.Path] = f.Errors
	}
	for _, r := range result.Results {
		name := r.Name
		if name == "" {
			name = r.Path
		}
		if r.Pass {
			fmt.Fprintf(w, "✓ %s\n", name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range failures[r.Path] {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.OK() {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
