package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/cuesheet/internal/config"
	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/store"
)

// DBOptions is embedded by every command that opens the show database.
type DBOptions struct {
	Database string
}

func (o *DBOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (default $DB_PATH, then camerasheet.db)")
}

// loadConfig reads the environment and applies the --db override.
func (o *DBOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.Database != "" {
		cfg.DBPath = o.Database
	}
	return cfg, nil
}

// openStore opens the configured database.
func openStore(path string, logger *slog.Logger) (*store.Store, error) {
	logger.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// session is an open database with a controller over it, for the one-shot
// commands.
type session struct {
	cfg    config.Config
	store  *store.Store
	ctrl   *control.Controller
	logger *slog.Logger
}

func openSession(root *RootOptions, db *DBOptions, cmd *cobra.Command) (*session, error) {
	logger := newLogger(root, cmd.ErrOrStderr())
	cfg, err := db.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	ctrl := control.New(st,
		control.WithLogger(logger),
		control.WithProjector(cfg.Projector()),
	)
	return &session{cfg: cfg, store: st, ctrl: ctrl, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
