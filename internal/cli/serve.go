package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cuesheet/internal/auth"
	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/oscctl"
	"github.com/roach88/cuesheet/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	DBOptions
	Addr      string
	OSCAddr   string
	OSCPrefix string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, WebSocket and OSC server",
		Long: `Serve the show over HTTP with a WebSocket push channel at /ws.

Configuration comes from the environment (DB_PATH, CUESHEET_ADDR,
CUESHEET_OSC_ADDR, APP_VERSION, CUESHEET_HEARTBEAT, ...). Flags override it.
The OSC control surface only starts when an OSC address is configured.

A new session key is generated on every start, so restarting the server
signs everybody out. If no password is set, the default password "admin"
is stored.

Example:
  cuesheet serve
  cuesheet serve --db ./show.db --addr :8080 --osc :53000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "HTTP listen address (default $CUESHEET_ADDR, then :8000)")
	cmd.Flags().StringVar(&opts.OSCAddr, "osc", "", "OSC UDP listen address (default $CUESHEET_OSC_ADDR, off when empty)")
	cmd.Flags().StringVar(&opts.OSCPrefix, "osc-prefix", oscctl.DefaultPrefix, "OSC address prefix")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.OSCAddr != "" {
		cfg.OSCAddr = opts.OSCAddr
	}

	st, err := openStore(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database ready", "path", cfg.DBPath)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	key, err := auth.NewSessionKey()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate session key", err)
	}
	gate, err := auth.New(st, key, auth.WithSessionTTL(cfg.SessionTTL), auth.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create password gate", err)
	}
	if _, err := gate.EnsureDefaultPassword(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to seed password", err)
	}

	ctrl := control.New(st,
		control.WithLogger(logger),
		control.WithProjector(cfg.Projector()),
		control.WithHubOptions(
			hub.WithHeartbeat(cfg.Heartbeat),
			hub.WithSendTimeout(cfg.SendTimeout),
		),
	)
	srv := server.New(ctrl,
		server.WithGate(gate),
		server.WithVersion(cfg.Version),
		server.WithLogger(logger),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 2)
	running := 1
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
	}()
	if cfg.OSCAddr != "" {
		running++
		surface := oscctl.New(ctrl, oscctl.WithPrefix(opts.OSCPrefix), oscctl.WithLogger(logger))
		go func() {
			errCh <- surface.ListenAndServe(ctx, cfg.OSCAddr)
		}()
	}

	logger.Info("server starting", "addr", cfg.Addr, "osc", cfg.OSCAddr, "version", cfg.Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", cfg.Addr)

	// The first listener to fail stops the other.
	var firstErr error
	for range running {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	if firstErr != nil {
		return WrapExitError(ExitFailure, "server error", firstErr)
	}

	logger.Info("server stopped gracefully")
	return nil
}
