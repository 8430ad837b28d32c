// Package testutil provides test doubles shared across cuesheet packages:
// hub sinks that record, fail or stall, and a throwaway store.
package testutil
