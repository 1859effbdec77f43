package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is anything the group starts and stops.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs consumers that share one subscriber and closes the
// subscriber after they stop.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{subscriber: subscriber, logger: logger}
}

func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start is all or nothing: on the first failure the consumers already
// running are stopped again.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			if stopErr := stop(g.consumers[:i]); stopErr != nil {
				g.logger.Warn("rollback after failed start", zap.Error(stopErr))
			}

			return fmt.Errorf("start consumer %d: %w", i, err)
		}
	}

	g.logger.Info("consumer group started", zap.Int("consumers", len(g.consumers)))

	return nil
}

// Shutdown stops every consumer and then the subscriber, joining all errors.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	return errors.Join(stop(g.consumers), g.subscriber.Close())
}

// stop shuts consumers down newest first.
func stop(consumers []Runnable) error {
	errs := make([]error, 0, len(consumers))

	for i := len(consumers) - 1; i >= 0; i-- {
		errs = append(errs, consumers[i].Shutdown())
	}

	return errors.Join(errs...)
}
