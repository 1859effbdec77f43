package usage

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/keygate/internal/credential"
)

// Tracker triggers the accounting side effects of a successful call.
type Tracker struct {
	counters *Counters
	recorder *Recorder
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewTracker creates a tracker feeding the given counters and recorder.
func NewTracker(counters *Counters, recorder *Recorder) *Tracker {
	return &Tracker{
		counters: counters,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Track spawns the counter increment and the event append and returns
// without waiting for either.
func (t *Tracker) Track(key credential.APIKey, endpoint Endpoint) {
	event := &Event{
		ID:       uuid.NewString(),
		APIKey:   key,
		Endpoint: endpoint,
		CalledAt: t.now(),
	}

	t.pending.Add(1)

	go func() {
		defer t.pending.Done()

		t.counters.Increment(endpoint)
	}()

	t.recorder.Record(event)
}

// Wait blocks until all side effects started so far have completed.
func (t *Tracker) Wait() {
	t.pending.Wait()
	t.recorder.Wait()
}
