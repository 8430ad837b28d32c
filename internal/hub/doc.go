// Package hub fans show events out to every connected display.
//
// A Sink is one live connection. Register sends the new sink the current
// state snapshot before it sees any broadcast, so late joiners never need a
// separate catch-up call. Broadcast delivers an event to every sink
// concurrently, each bounded by a send timeout; sinks that fail are collected
// during the pass and removed afterwards. A failing sink never affects the
// others or the caller that triggered the event.
//
// Broadcasts are serialized, so every sink observes events in the same
// order. Each broadcast event carries a monotonically increasing Seq.
//
// Heartbeat pings a single sink on a fixed interval until it fails or its
// context ends.
package hub
