package usage

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/keygate/internal/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultWriteTimeout bounds a single durable append.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultDrainTimeout bounds how long Shutdown waits for in-flight appends.
	DefaultDrainTimeout = 10 * time.Second
)

// Recorder appends usage events in the background. Appends are at-most-once:
// failures are logged and counted, never retried and never reported to the caller.
type Recorder struct {
	store        EventStore
	metrics      *metrics.Metrics
	logger       *zap.Logger
	writeTimeout time.Duration
	drainTimeout time.Duration
	inflight     sync.WaitGroup
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithWriteTimeout overrides DefaultWriteTimeout.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.writeTimeout = d }
}

// WithDrainTimeout overrides DefaultDrainTimeout.
func WithDrainTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.drainTimeout = d }
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store EventStore, m *metrics.Metrics, logger *zap.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:        store,
		metrics:      m,
		logger:       logger,
		writeTimeout: DefaultWriteTimeout,
		drainTimeout: DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Record starts the append and returns immediately.
func (r *Recorder) Record(event *Event) {
	r.inflight.Add(1)

	go func() {
		defer r.inflight.Done()

		r.append(event)
	}()
}

func (r *Recorder) append(event *Event) {
	// Detached from the request: its cancellation must not abort the write.
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.store.AppendUsageEvent(ctx, event); err != nil {
		r.metrics.ObserveUsageEvent(metrics.ResultFailed)
		r.logger.Error("failed to record usage event",
			zap.String("eventId", event.ID),
			zap.String("endpoint", string(event.Endpoint)),
			zap.Error(err),
		)

		return
	}

	r.metrics.ObserveUsageEvent(metrics.ResultRecorded)
}

// Wait blocks until every started append has finished.
func (r *Recorder) Wait() {
	r.inflight.Wait()
}

// Shutdown waits for in-flight appends up to the drain timeout.
// Appends still running after that are abandoned.
func (r *Recorder) Shutdown() error {
	done := make(chan struct{})

	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(r.drainTimeout):
		r.logger.Warn("abandoning in-flight usage events", zap.Duration("waited", r.drainTimeout))
	}

	return nil
}
