package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/roach88/cuesheet/internal/auth"
	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/hub"
)

const (
	// maxUploadBytes caps import request bodies.
	maxUploadBytes = 10 << 20

	shutdownTimeout = 5 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	ctrl    *control.Controller
	gate    *auth.Gate
	ids     hub.IDGenerator
	version string
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGate enables the password gate.
func WithGate(g *auth.Gate) Option {
	return func(s *Server) {
		s.gate = g
	}
}

// WithVersion sets the version reported by /api/version. Default: "dev".
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithIDGenerator sets the connection id generator.
// Default: hub.UUIDv7Generator.
func WithIDGenerator(g hub.IDGenerator) Option {
	return func(s *Server) {
		s.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a Server over ctrl.
func New(ctrl *control.Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:    ctrl,
		ids:     hub.UUIDv7Generator{},
		version: "dev",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/state", s.handleState)

	mux.HandleFunc("GET /api/cues", s.guard(auth.PageDirector, s.handleCueWindow))
	mux.HandleFunc("GET /api/cues/all", s.guard(auth.PageOverview, s.handleAllCues))
	mux.HandleFunc("GET /api/cues/{cue_id}", s.guard(auth.PageOverview, s.handleGetCue))
	mux.HandleFunc("POST /api/cues", s.guard(auth.PageOperator, s.handleCreateCue))
	mux.HandleFunc("PUT /api/cues/{cue_id}", s.guard(auth.PageOperator, s.handleUpdateCue))
	mux.HandleFunc("DELETE /api/cues/{cue_id}", s.guard(auth.PageOperator, s.handleDeleteCue))

	mux.HandleFunc("POST /api/advance", s.guard(auth.PageOperator, s.handleAdvance))
	mux.HandleFunc("POST /api/previous", s.guard(auth.PageOperator, s.handlePrevious))
	mux.HandleFunc("POST /api/goto/{cue_number}", s.guard(auth.PageOperator, s.handleGoto))
	mux.HandleFunc("POST /api/reset-position", s.guard(auth.PageOperator, s.handleResetPosition))

	mux.HandleFunc("GET /api/camera/{camera_number}", s.guard(auth.PageCamera, s.handleCameraView))
	mux.HandleFunc("GET /api/cameras", s.guard(auth.PageCamera, s.handleCameras))
	mux.HandleFunc("PUT /api/camera/{cue_id}/{camera_number}", s.guard(auth.PageOperator, s.handleUpsertCamera))
	mux.HandleFunc("DELETE /api/camera/{cue_id}/{camera_number}", s.guard(auth.PageOperator, s.handleDeleteCamera))
	mux.HandleFunc("POST /api/camera/{cue_id}/{camera_number}/toggle-take", s.guard(auth.PageOperator, s.handleToggleTake))

	mux.HandleFunc("GET /api/settings/{key}", s.handleGetSetting)
	mux.HandleFunc("POST /api/settings/{key}", s.guard(auth.PageAdmin, s.handleSetSetting))
	mux.HandleFunc("POST /api/start-over", s.guard(auth.PageAdmin, s.handleStartOver))
	mux.HandleFunc("POST /api/import/csv", s.guard(auth.PageAdmin, s.handleImportCSV))
	mux.HandleFunc("POST /api/import/show", s.guard(auth.PageAdmin, s.handleImportShow))
	mux.HandleFunc("GET /api/export/csv", s.guard(auth.PageAdmin, s.handleExportCSV))

	if s.gate != nil {
		mux.HandleFunc("POST /api/login", s.handleLogin)
		mux.HandleFunc("POST /api/logout", s.handleLogout)
		mux.HandleFunc("POST /api/password", s.guard(auth.PageAdmin, s.handleChangePassword))
	}

	mux.Handle("GET /ws", s.wsHandler())

	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	s.logger.Info("http stopped")
	return nil
}
