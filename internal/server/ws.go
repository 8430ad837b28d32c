package server

import (
	"context"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/roach88/cuesheet/internal/hub"
)

// wsSink delivers hub events to one websocket client as JSON text frames.
type wsSink struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex
}

func (s *wsSink) ID() string {
	return s.id
}

// Send writes ev, giving up at ctx's deadline.
func (s *wsSink) Send(ctx context.Context, ev hub.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return websocket.JSON.Send(s.conn, ev)
}

func (s *Server) wsHandler() websocket.Handler {
	return func(conn *websocket.Conn) {
		s.serveWS(conn)
	}
}

// serveWS registers the connection with the hub, keeps it alive with
// heartbeats and discards whatever the client sends until it goes away.
func (s *Server) serveWS(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(conn.Request().Context())
	defer cancel()

	h := s.ctrl.Hub()
	sink := &wsSink{id: s.ids.Generate(), conn: conn}
	if err := h.Register(ctx, sink); err != nil {
		s.logger.Warn("websocket register failed", "conn", sink.id, "error", err)
		return
	}
	defer h.Unregister(sink.id)

	// Heartbeat failure or shutdown closes the socket, which ends the read
	// loop below.
	go func() {
		_ = h.Heartbeat(ctx, sink)
		_ = conn.SetDeadline(time.Now())
	}()

	for {
		var msg string
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			s.logger.Debug("websocket closed", "conn", sink.id, "error", err)
			return
		}
	}
}
