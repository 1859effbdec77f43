package usage_test

import (
	"sync"
	"testing"

	"github.com/serroba/keygate/internal/usage"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	t.Run("registered endpoints start at zero", func(t *testing.T) {
		c := usage.NewCounters(usage.Endpoints...)

		assert.Equal(t, map[usage.Endpoint]uint64{usage.EndpointChangeSign: 0}, c.Snapshot())
	})

	t.Run("zero value counts without registration", func(t *testing.T) {
		var c usage.Counters

		assert.Empty(t, c.Snapshot())

		c.Increment(usage.EndpointChangeSign)

		assert.Equal(t, map[usage.Endpoint]uint64{usage.EndpointChangeSign: 1}, c.SnapshotAndReset())
		assert.Equal(t, map[usage.Endpoint]uint64{usage.EndpointChangeSign: 0}, c.Snapshot())
	})

	t.Run("snapshot and reset returns counts then zeroes", func(t *testing.T) {
		c := usage.NewCounters(usage.EndpointChangeSign)

		c.Increment(usage.EndpointChangeSign)
		c.Increment(usage.EndpointChangeSign)

		assert.Equal(t, uint64(2), c.SnapshotAndReset()[usage.EndpointChangeSign])
		assert.Equal(t, uint64(0), c.SnapshotAndReset()[usage.EndpointChangeSign])
	})

	t.Run("snapshot does not reset", func(t *testing.T) {
		c := usage.NewCounters(usage.EndpointChangeSign)

		c.Increment(usage.EndpointChangeSign)

		assert.Equal(t, uint64(1), c.Snapshot()[usage.EndpointChangeSign])
		assert.Equal(t, uint64(1), c.Snapshot()[usage.EndpointChangeSign])
	})

	t.Run("reset zeroes every endpoint and keeps them registered", func(t *testing.T) {
		c := usage.NewCounters(usage.EndpointChangeSign)

		c.Increment(usage.EndpointChangeSign)
		c.Increment("other")
		c.Reset()

		assert.Equal(t, map[usage.Endpoint]uint64{usage.EndpointChangeSign: 0, "other": 0}, c.Snapshot())
	})

	t.Run("returned snapshot is detached", func(t *testing.T) {
		c := usage.NewCounters(usage.EndpointChangeSign)

		snapshot := c.Snapshot()
		snapshot[usage.EndpointChangeSign] = 99

		assert.Equal(t, uint64(0), c.Snapshot()[usage.EndpointChangeSign])
	})

	t.Run("concurrent increments are all counted", func(t *testing.T) {
		c := usage.NewCounters(usage.EndpointChangeSign)

		const n = 1000

		var wg sync.WaitGroup

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				c.Increment(usage.EndpointChangeSign)
			}()
		}

		wg.Wait()

		assert.Equal(t, uint64(n), c.SnapshotAndReset()[usage.EndpointChangeSign])
		assert.Equal(t, uint64(0), c.SnapshotAndReset()[usage.EndpointChangeSign])
	})

	t.Run("racing snapshots neither lose nor double count", func(t *testing.T) {
		c := usage.NewCounters(usage.EndpointChangeSign)

		const n = 2000

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total uint64
		)

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				c.Increment(usage.EndpointChangeSign)
			}()
		}

		for range 50 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				got := c.SnapshotAndReset()[usage.EndpointChangeSign]

				mu.Lock()
				total += got
				mu.Unlock()
			}()
		}

		wg.Wait()

		total += c.SnapshotAndReset()[usage.EndpointChangeSign]

		assert.Equal(t, uint64(n), total)
	})
}
