package control

import (
	"context"
	"log/slog"

	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/projector"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

// Controller wires the core components together.
type Controller struct {
	store  *store.Store
	seq    *sequencer.Sequencer
	play   *playback.Machine
	proj   *projector.Projector
	hub    *hub.Hub
	logger *slog.Logger
}

type options struct {
	logger    *slog.Logger
	projector projector.Config
	hubOpts   []hub.Option
}

// Option configures a Controller.
type Option func(*options)

// WithLogger sets the logger for the controller and every component it
// creates. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithProjector sets the camera view configuration.
func WithProjector(cfg projector.Config) Option {
	return func(o *options) {
		o.projector = cfg
	}
}

// WithHubOptions passes options through to the hub.
func WithHubOptions(opts ...hub.Option) Option {
	return func(o *options) {
		o.hubOpts = append(o.hubOpts, opts...)
	}
}

// New builds a Controller and its components over st.
func New(st *store.Store, opts ...Option) *Controller {
	o := options{logger: slog.Default(), projector: projector.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	play := playback.New(st, playback.WithLogger(o.logger))
	hubOpts := append([]hub.Option{hub.WithLogger(o.logger)}, o.hubOpts...)

	return &Controller{
		store:  st,
		seq:    sequencer.New(st, sequencer.WithLogger(o.logger)),
		play:   play,
		proj:   projector.New(st, o.projector),
		hub:    hub.New(play.State, hubOpts...),
		logger: o.logger,
	}
}

// Hub returns the broadcast hub connections register with.
func (c *Controller) Hub() *hub.Hub {
	return c.hub
}

// Ping checks the store is reachable.
func (c *Controller) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Controller) publish(ctx context.Context, ev hub.Event) {
	report := c.hub.Broadcast(ctx, ev)
	if len(report.Failed) > 0 {
		c.logger.Info("dropped connections", "event", ev.Type, "failed", report.Failed)
	}
}

// activeScript returns the script playback currently references.
func (c *Controller) activeScript(ctx context.Context) (int64, error) {
	var id int64
	err := c.store.View(ctx, func(tx *store.Tx) error {
		p, err := tx.Pointer(ctx)
		id = p.ScriptID
		return err
	})
	return id, err
}

// State returns the current playback snapshot.
func (c *Controller) State(ctx context.Context) (show.State, error) {
	return c.play.State(ctx)
}
