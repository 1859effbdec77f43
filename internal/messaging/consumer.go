package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler acts on one decoded event.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer decodes JSON messages from one topic and passes them to a Handler.
//
// Every message is acked whatever the outcome, so an event that cannot be
// decoded or handled is logged and lost rather than redelivered.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Start subscribes and consumes in the background until ctx ends, the
// subscription closes or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		var msg *message.Message

		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}

			msg = m
		}

		err := c.process(ctx, msg)
		msg.Ack()

		if err != nil {
			c.logger.Error("event dropped", zap.String("messageId", msg.UUID), zap.Error(err))

			continue
		}

		c.logger.Debug("event processed", zap.String("messageId", msg.UUID))
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) error {
	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return c.handler(ctx, &event)
}

// Shutdown stops consuming and waits for the message in hand.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
