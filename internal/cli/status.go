package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/cuesheet/internal/oscctl"
	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/show"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	DBOptions
}

// Status is the status command's JSON payload.
type Status struct {
	ScriptName string             `json:"script_name"`
	Cues       int                `json:"cues"`
	Current    *show.Cue          `json:"current"`
	Cameras    []show.CameraCount `json:"cameras"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the script and playback position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(opts.RootOptions, &opts.DBOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	state, err := s.ctrl.State(ctx)
	if err != nil {
		return out.Fail("failed to read state", err)
	}
	cues, err := s.ctrl.AllCues(ctx)
	if err != nil {
		return out.Fail("failed to read cues", err)
	}
	cameras, err := s.ctrl.Cameras(ctx)
	if err != nil {
		return out.Fail("failed to read cameras", err)
	}
	if cameras == nil {
		cameras = []show.CameraCount{}
	}

	status := Status{
		ScriptName: state.ScriptName,
		Cues:       len(cues),
		Current:    state.Cue,
		Cameras:    cameras,
	}
	return out.Success(status, func(w io.Writer) {
		fmt.Fprintf(w, "Script:  %s\n", status.ScriptName)
		fmt.Fprintf(w, "Cues:    %d\n", status.Cues)
		if status.Current != nil {
			fmt.Fprintf(w, "Current: #%d %s\n", status.Current.SequenceNumber, status.Current.LineText)
		} else {
			fmt.Fprintln(w, "Current: none")
		}
		for _, c := range status.Cameras {
			fmt.Fprintf(w, "Camera %d: %d cues\n", c.CameraNumber, c.AssignmentCount)
		}
	})
}

// GotoOptions holds flags for the goto command.
type GotoOptions struct {
	*RootOptions
	DBOptions
	OSCAddr   string
	OSCPrefix string
}

// GotoResult is the goto command's JSON payload.
type GotoResult struct {
	Cue     int       `json:"cue"`
	Sent    string    `json:"sent_to,omitempty"`
	Moved   bool      `json:"moved"`
	Reason  string    `json:"reason,omitempty"`
	Current *show.Cue `json:"current,omitempty"`
}

// NewGotoCommand creates the goto command.
func NewGotoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GotoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "goto <cue-number>",
		Short: "Move playback to a cue",
		Long: `Move playback to the cue with the given number.

With --osc the command is sent to a running server's OSC surface, so
connected displays update immediately. Without it the database is changed
directly; displays pick the change up on their next reconnect.

Example:
  cuesheet goto 12 --osc 127.0.0.1:53000
  cuesheet goto 1 --db ./show.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.Atoi(args[0])
			if err != nil || seq <= 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid cue number %q", args[0]))
			}
			return runGoto(opts, seq, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.OSCAddr, "osc", "", "send to a running server's OSC address (host:port)")
	cmd.Flags().StringVar(&opts.OSCPrefix, "osc-prefix", oscctl.DefaultPrefix, "OSC address prefix")
	return cmd
}

func runGoto(opts *GotoOptions, seq int, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	if opts.OSCAddr != "" {
		client, err := oscctl.NewClient(opts.OSCAddr, opts.OSCPrefix)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid OSC address", err)
		}
		if err := client.Goto(seq); err != nil {
			return out.Fail("failed to send goto", err)
		}
		result := GotoResult{Cue: seq, Sent: opts.OSCAddr}
		return out.Success(result, func(w io.Writer) {
			fmt.Fprintf(w, "Sent goto %d to %s\n", seq, opts.OSCAddr)
		})
	}

	s, err := openSession(opts.RootOptions, &opts.DBOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	tr, err := s.ctrl.Goto(cmd.Context(), seq)
	if err != nil {
		return out.Fail("goto failed", err)
	}
	return out.Success(gotoResult(seq, tr), func(w io.Writer) {
		fmt.Fprintf(w, "Current: #%d %s\n", tr.State.Cue.SequenceNumber, tr.State.Cue.LineText)
	})
}

func gotoResult(seq int, tr playback.Transition) GotoResult {
	return GotoResult{Cue: seq, Moved: tr.Moved, Reason: tr.Reason, Current: tr.State.Cue}
}
