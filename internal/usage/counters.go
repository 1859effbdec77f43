package usage

import (
	"math"
	"sync"
)

// Counters is the process-local call aggregate. One mutex covers every
// read-modify-write, snapshot and reset. The zero value is ready to use but
// reports only endpoints that have been called.
type Counters struct {
	mu     sync.Mutex
	counts map[Endpoint]uint64
}

// NewCounters creates counters with the given endpoints pre-registered at zero.
func NewCounters(endpoints ...Endpoint) *Counters {
	counts := make(map[Endpoint]uint64, len(endpoints))
	for _, e := range endpoints {
		counts[e] = 0
	}

	return &Counters{counts: counts}
}

// Increment adds one call to the endpoint, saturating at the maximum value.
func (c *Counters) Increment(endpoint Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts == nil {
		c.counts = make(map[Endpoint]uint64)
	}

	if c.counts[endpoint] < math.MaxUint64 {
		c.counts[endpoint]++
	}
}

// SnapshotAndReset copies all counters and zeroes them in one critical section.
func (c *Counters) SnapshotAndReset() map[Endpoint]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[Endpoint]uint64, len(c.counts))
	for e, n := range c.counts {
		snapshot[e] = n
		c.counts[e] = 0
	}

	return snapshot
}

// Snapshot copies all counters without resetting them.
func (c *Counters) Snapshot() map[Endpoint]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[Endpoint]uint64, len(c.counts))
	for e, n := range c.counts {
		snapshot[e] = n
	}

	return snapshot
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := range c.counts {
		c.counts[e] = 0
	}
}
