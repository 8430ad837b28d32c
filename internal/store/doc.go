// Package store provides SQLite-backed durable storage for cuesheet.
//
// The store holds:
//   - Scripts: the show being run (one active at a time)
//   - Cues: ordered lines of a script (dense sequence_number 1..N)
//   - Camera Assignments: per-cue, per-camera shot instructions
//   - Playback State: the singleton current-cue pointer
//   - Settings: flat key/value configuration
//
// # Transactions
//
// All access goes through Update (read-write) or View (read-only) which hand
// a *Tx to a callback. The connection pool is limited to a single connection,
// so transactions are fully serialized: the transaction boundary is the only
// mutual-exclusion primitive the rest of the system relies on.
//
// Never call Store methods from inside an Update/View callback. With one
// connection the nested call would wait for the outer transaction forever.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
