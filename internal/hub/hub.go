package hub

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/roach88/cuesheet/internal/show"
)

// Default timings.
const (
	DefaultHeartbeat   = 20 * time.Second
	DefaultSendTimeout = 5 * time.Second
)

// Sink is one live client connection.
//
// Send must be safe for concurrent use: broadcasts and the heartbeat for the
// same sink may overlap. Send should honour ctx so a stalled client cannot
// hold a broadcast past the send timeout.
type Sink interface {
	ID() string
	Send(ctx context.Context, ev Event) error
}

// SnapshotFunc reads the current playback state.
type SnapshotFunc func(ctx context.Context) (show.State, error)

// Report summarizes one broadcast.
type Report struct {
	Delivered int
	// Failed lists the ids of sinks that were removed, sorted.
	Failed []string
}

// Hub is the set of live sinks.
type Hub struct {
	snapshot    SnapshotFunc
	logger      *slog.Logger
	heartbeat   time.Duration
	sendTimeout time.Duration
	clock       Clock

	// fanout serializes Register and Broadcast so all sinks see the same
	// event order, and a new sink sees its snapshot first.
	fanout sync.Mutex

	mu    sync.RWMutex
	sinks map[string]Sink
}

// Option configures a Hub.
type Option func(*Hub)

// WithHeartbeat sets the ping interval. Default: DefaultHeartbeat.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Hub) {
		h.heartbeat = d
	}
}

// WithSendTimeout bounds each individual send. Default: DefaultSendTimeout.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.sendTimeout = d
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = l
	}
}

// New creates a Hub that greets new sinks with snapshot.
func New(snapshot SnapshotFunc, opts ...Option) *Hub {
	h := &Hub{
		snapshot:    snapshot,
		logger:      slog.Default(),
		heartbeat:   DefaultHeartbeat,
		sendTimeout: DefaultSendTimeout,
		sinks:       make(map[string]Sink),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register sends sink a state_update with the current snapshot, then adds
// it to the live set. If the snapshot cannot be read or sent the sink is
// not added.
func (h *Hub) Register(ctx context.Context, sink Sink) error {
	h.fanout.Lock()
	defer h.fanout.Unlock()

	state, err := h.snapshot(ctx)
	if err != nil {
		return err
	}

	ev := StateUpdate(state)
	ev.Seq = h.clock.Current()
	if err := h.send(ctx, sink, ev); err != nil {
		h.logger.Warn("initial snapshot failed", "conn", sink.ID(), "error", err)
		return show.TransportFailure(sink.ID(), err)
	}

	h.mu.Lock()
	h.sinks[sink.ID()] = sink
	n := len(h.sinks)
	h.mu.Unlock()

	h.logger.Info("connection registered", "conn", sink.ID(), "connections", n)
	return nil
}

// Unregister removes the sink with the given id. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.sinks[id]
	delete(h.sinks, id)
	n := len(h.sinks)
	h.mu.Unlock()

	if ok {
		h.logger.Info("connection unregistered", "conn", id, "connections", n)
	}
}

// Len returns the number of live sinks.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

// IDs returns the ids of the live sinks, sorted.
func (h *Hub) IDs() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sinks))
	for id := range h.sinks {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Broadcast stamps ev with the next sequence number and delivers it to
// every live sink. Sends run concurrently, each bounded by the send timeout.
// Sinks whose send fails are removed once every send has finished.
//
// Cancelling ctx does not abort delivery: the caller's request ending must
// not look like every client failing.
func (h *Hub) Broadcast(ctx context.Context, ev Event) Report {
	ctx = context.WithoutCancel(ctx)

	h.fanout.Lock()
	defer h.fanout.Unlock()

	ev.Seq = h.clock.Next()

	h.mu.RLock()
	targets := make([]Sink, 0, len(h.sinks))
	for _, s := range h.sinks {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed []string
	)
	for _, s := range targets {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			if err := h.send(ctx, s, ev); err != nil {
				h.logger.Warn("broadcast send failed",
					"conn", s.ID(),
					"event", ev.Type,
					"error", show.TransportFailure(s.ID(), err),
				)
				failMu.Lock()
				failed = append(failed, s.ID())
				failMu.Unlock()
			}
		}(s)
	}
	wg.Wait()

	// Sweep.
	if len(failed) > 0 {
		h.mu.Lock()
		for _, id := range failed {
			delete(h.sinks, id)
		}
		h.mu.Unlock()
		sort.Strings(failed)
	}

	h.logger.Debug("broadcast", "event", ev.Type, "seq", ev.Seq,
		"delivered", len(targets)-len(failed), "failed", len(failed))

	return Report{Delivered: len(targets) - len(failed), Failed: failed}
}

// Heartbeat pings sink every heartbeat interval until ctx ends or a ping
// fails. A failed ping unregisters the sink. Blocks; run it in the
// connection's own goroutine.
func (h *Hub) Heartbeat(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.send(ctx, sink, PingEvent()); err != nil {
				h.logger.Warn("heartbeat failed", "conn", sink.ID(), "error", err)
				h.Unregister(sink.ID())
				return show.TransportFailure(sink.ID(), err)
			}
		}
	}
}

func (h *Hub) send(ctx context.Context, s Sink, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()
	return s.Send(ctx, ev)
}
