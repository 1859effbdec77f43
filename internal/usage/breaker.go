package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker rejects appends.
var ErrCircuitOpen = errors.New("usage event store unavailable")

// BreakerSettings tunes the circuit breaker around an EventStore.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerSettings trips after five consecutive failures and lets a trial call through after 30s.
var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// BreakerStore fails appends fast while the wrapped store keeps failing, so a
// storage outage does not pile up goroutines waiting on write timeouts.
type BreakerStore struct {
	store   EventStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps store with a circuit breaker.
func NewBreakerStore(store EventStore, settings BreakerSettings, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "usage-events",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerStore{store: store, breaker: cb}
}

// AppendUsageEvent forwards to the wrapped store unless the breaker is open.
func (b *BreakerStore) AppendUsageEvent(ctx context.Context, event *Event) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.store.AppendUsageEvent(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}

	return err
}

// State returns the breaker state name.
func (b *BreakerStore) State() string {
	return b.breaker.State().String()
}
