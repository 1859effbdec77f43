package usage

import (
	"context"
	"fmt"

	"github.com/serroba/keygate/internal/messaging"
	"go.uber.org/zap"
)

// StreamStore hands events to a message stream instead of writing them directly.
// A consumer process persists them with PersistHandler.
type StreamStore struct {
	publish messaging.Publish[Event]
}

// NewStreamStore creates a store publishing through the given function.
func NewStreamStore(publish messaging.Publish[Event]) *StreamStore {
	return &StreamStore{publish: publish}
}

// AppendUsageEvent publishes the event. The publish API takes no context, so
// a publish still running when ctx ends is abandoned and may yet deliver.
func (s *StreamStore) AppendUsageEvent(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish usage event: %w", err)
	}

	done := make(chan error, 1)

	go func() { done <- s.publish(event) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("publish usage event: %w", ctx.Err())
	}
}

// PersistHandler returns a stream handler that appends each event to store.
func PersistHandler(store EventStore, logger *zap.Logger) messaging.Handler[Event] {
	return func(ctx context.Context, event *Event) error {
		if err := store.AppendUsageEvent(ctx, event); err != nil {
			return err
		}

		logger.Debug("usage event persisted",
			zap.String("eventId", event.ID),
			zap.String("endpoint", string(event.Endpoint)),
		)

		return nil
	}
}
