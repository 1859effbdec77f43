package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Identified events carry their own ID, which becomes the message UUID so
// producer and consumer logs refer to the same value.
type Identified interface {
	MessageID() string
}

// Publish sends one typed event.
type Publish[T any] func(event *T) error

// NewPublishFunc encodes events as JSON and publishes them to topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", topic, err)
		}

		return publisher.Publish(topic, message.NewMessage(messageID(event), payload))
	}
}

func messageID(event any) string {
	if e, ok := event.(Identified); ok && e.MessageID() != "" {
		return e.MessageID()
	}

	return watermill.NewUUID()
}

// PublisherGroup owns the publisher shared by every publish function and
// closes it on shutdown.
type PublisherGroup struct {
	publisher message.Publisher
}

func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
