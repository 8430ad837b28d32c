package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cuesheet/internal/auth"
)

// PasswordOptions holds flags for the reset-password command.
type PasswordOptions struct {
	*RootOptions
	DBOptions
}

// NewResetPasswordCommand creates the reset-password command.
func NewResetPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PasswordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Restore the default admin password",
		Long: `Set the admin password back to the default ("admin").

Use this when the password is lost. Sessions issued by a running server
stay valid until they expire or the server restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetPassword(opts, cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runResetPassword(opts *PasswordOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(opts.RootOptions, &opts.DBOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	// The key only signs sessions, which this command never issues.
	key, err := auth.NewSessionKey()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate session key", err)
	}
	gate, err := auth.New(s.store, key, auth.WithLogger(s.logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create password gate", err)
	}
	if err := gate.ResetPassword(cmd.Context()); err != nil {
		return out.Fail("failed to reset password", err)
	}

	return out.Success(map[string]bool{"reset": true}, func(w io.Writer) {
		fmt.Fprintf(w, "Password reset to %q.\n", auth.DefaultPassword)
	})
}
