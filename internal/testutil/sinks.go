package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/cuesheet/internal/hub"
)

// ErrSinkClosed is returned by FailingSink.
var ErrSinkClosed = errors.New("sink closed")

// RecordingSink records every event it is sent.
//
// Thread-safety: RecordingSink is safe for concurrent use via internal mutex.
type RecordingSink struct {
	id string

	mu     sync.Mutex
	events []hub.Event
	notify chan struct{}
}

// NewRecordingSink creates a sink with the given id.
func NewRecordingSink(id string) *RecordingSink {
	return &RecordingSink{id: id, notify: make(chan struct{}, 1)}
}

// ID implements hub.Sink.
func (s *RecordingSink) ID() string { return s.id }

// Send implements hub.Sink.
func (s *RecordingSink) Send(_ context.Context, ev hub.Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Events returns a copy of everything received so far.
func (s *RecordingSink) Events() []hub.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hub.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Types returns the types of everything received so far.
func (s *RecordingSink) Types() []hub.EventType {
	events := s.Events()
	out := make([]hub.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

// Last returns the most recent event. ok is false if none arrived.
func (s *RecordingSink) Last() (ev hub.Event, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return hub.Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// Reset discards recorded events.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

// Notify is signalled (coalesced) after each Send.
func (s *RecordingSink) Notify() <-chan struct{} {
	return s.notify
}

// FailingSink accepts the first Allow sends then fails every later one.
type FailingSink struct {
	*RecordingSink

	mu    sync.Mutex
	allow int
}

// NewFailingSink creates a sink that delivers allow events and then fails.
// NewFailingSink(id, 1) accepts the registration snapshot only.
func NewFailingSink(id string, allow int) *FailingSink {
	return &FailingSink{RecordingSink: NewRecordingSink(id), allow: allow}
}

// Send implements hub.Sink.
func (s *FailingSink) Send(ctx context.Context, ev hub.Event) error {
	s.mu.Lock()
	if s.allow <= 0 {
		s.mu.Unlock()
		return ErrSinkClosed
	}
	s.allow--
	s.mu.Unlock()
	return s.RecordingSink.Send(ctx, ev)
}

// StallingSink accepts the first Allow sends then blocks every later one
// until its context ends, like a client that stopped reading.
type StallingSink struct {
	*RecordingSink

	mu    sync.Mutex
	allow int
}

// NewStallingSink creates a sink that delivers allow events then stalls.
func NewStallingSink(id string, allow int) *StallingSink {
	return &StallingSink{RecordingSink: NewRecordingSink(id), allow: allow}
}

// Send implements hub.Sink.
func (s *StallingSink) Send(ctx context.Context, ev hub.Event) error {
	s.mu.Lock()
	if s.allow <= 0 {
		s.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	s.allow--
	s.mu.Unlock()
	return s.RecordingSink.Send(ctx, ev)
}
