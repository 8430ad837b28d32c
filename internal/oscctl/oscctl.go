// Package oscctl is an OSC control surface so show-control consoles can
// drive playback. Messages (with the default prefix):
//
//	/cuesheet/go        advance
//	/cuesheet/advance   advance
//	/cuesheet/previous  previous
//	/cuesheet/goto n    go to cue number n (int, float or numeric string)
//	/cuesheet/reset     back to the first cue
//
// Commands run through the same controller as HTTP, so they broadcast
// identically. OSC has no reply channel here; failures are logged.
package oscctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/roach88/cuesheet/internal/playback"
)

// DefaultPrefix is the address prefix of every command.
const DefaultPrefix = "/cuesheet"

// commandTimeout bounds each controller call.
const commandTimeout = 5 * time.Second

// Controller is the subset of control.Controller the surface drives.
type Controller interface {
	Advance(ctx context.Context) (playback.Transition, error)
	Previous(ctx context.Context) (playback.Transition, error)
	Goto(ctx context.Context, seq int) (playback.Transition, error)
	Reset(ctx context.Context) (playback.Transition, error)
}

// Surface maps OSC addresses to playback commands.
type Surface struct {
	ctrl   Controller
	prefix string
	logger *slog.Logger
}

// Option configures a Surface.
type Option func(*Surface)

// WithPrefix sets the address prefix. Default: DefaultPrefix.
func WithPrefix(p string) Option {
	return func(s *Surface) {
		s.prefix = "/" + strings.Trim(p, "/")
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		s.logger = l
	}
}

// New creates a Surface over ctrl.
func New(ctrl Controller, opts ...Option) *Surface {
	s := &Surface{ctrl: ctrl, prefix: DefaultPrefix, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatcher returns a dispatcher that routes every command. Commands run
// under ctx.
//
// Routing is by exact address through the catch-all handler: go-osc matches
// message addresses as unanchored patterns, so "/cuesheet/go" would also hit
// a "/cuesheet/goto" handler.
func (s *Surface) Dispatcher(ctx context.Context) (*osc.StandardDispatcher, error) {
	routes := map[string]command{
		s.prefix + "/go":       s.advance,
		s.prefix + "/advance":  s.advance,
		s.prefix + "/previous": s.previous,
		s.prefix + "/goto":     s.gotoCue,
		s.prefix + "/reset":    s.reset,
	}

	d := osc.NewStandardDispatcher()
	err := d.AddMsgHandler("*", func(msg *osc.Message) {
		fn, ok := routes[msg.Address]
		if !ok {
			s.logger.Debug("osc address ignored", "address", msg.Address)
			return
		}
		s.run(ctx, msg, fn)
	})
	if err != nil {
		return nil, fmt.Errorf("register osc handler: %w", err)
	}
	return d, nil
}

type command func(context.Context, *osc.Message) (playback.Transition, error)

func (s *Surface) run(ctx context.Context, msg *osc.Message, fn command) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	tr, err := fn(ctx, msg)
	if err != nil {
		s.logger.Warn("osc command failed", "address", msg.Address, "args", msg.Arguments, "error", err)
		return
	}
	s.logger.Info("osc command", "address", msg.Address, "moved", tr.Moved, "cue_id", tr.CueID(), "reason", tr.Reason)
}

func (s *Surface) advance(ctx context.Context, _ *osc.Message) (playback.Transition, error) {
	return s.ctrl.Advance(ctx)
}

func (s *Surface) previous(ctx context.Context, _ *osc.Message) (playback.Transition, error) {
	return s.ctrl.Previous(ctx)
}

func (s *Surface) reset(ctx context.Context, _ *osc.Message) (playback.Transition, error) {
	return s.ctrl.Reset(ctx)
}

func (s *Surface) gotoCue(ctx context.Context, msg *osc.Message) (playback.Transition, error) {
	if len(msg.Arguments) != 1 {
		return playback.Transition{}, fmt.Errorf("goto takes one argument, got %d", len(msg.Arguments))
	}
	n, err := cueNumber(msg.Arguments[0])
	if err != nil {
		return playback.Transition{}, err
	}
	return s.ctrl.Goto(ctx, n)
}

// cueNumber converts an OSC argument to a cue number. Floats must be whole.
func cueNumber(arg any) (int, error) {
	switch v := arg.(type) {
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float32:
		return wholeNumber(float64(v))
	case float64:
		return wholeNumber(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("goto argument %q is not a number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("goto argument of type %T is not a number", arg)
	}
}

func wholeNumber(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("goto argument %v is not a whole number", f)
	}
	return int(f), nil
}

// ListenAndServe listens for OSC over UDP on addr until ctx is cancelled.
func (s *Surface) ListenAndServe(ctx context.Context, addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("listen osc %s: %w", addr, err)
	}
	return s.Serve(ctx, conn)
}

// Serve reads OSC packets from conn until ctx is cancelled. conn is closed
// on return.
func (s *Surface) Serve(ctx context.Context, conn net.PacketConn) error {
	d, err := s.Dispatcher(ctx)
	if err != nil {
		_ = conn.Close()
		return err
	}
	srv := &osc.Server{Dispatcher: d}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	s.logger.Info("osc listening", "addr", conn.LocalAddr().String(), "prefix", s.prefix)
	err = srv.Serve(conn)
	if ctx.Err() != nil {
		s.logger.Info("osc stopped")
		return nil
	}
	_ = conn.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("serve osc: %w", err)
	}
	return nil
}
