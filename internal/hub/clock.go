package hub

import "sync/atomic"

// Clock hands out broadcast sequence numbers.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// Next returns the next sequence number. The first call returns 1.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out, 0 if none.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
