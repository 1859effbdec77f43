package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/keygate/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

type identifiedEvent struct {
	ID string `json:"id"`
}

func (e identifiedEvent) MessageID() string { return e.ID }

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes encoded event to the topic", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[testEvent](mock, "usage.recorded")

		err := publish(&testEvent{ID: "123", Endpoint: "change_sign"})

		require.NoError(t, err)
		assert.Equal(t, "usage.recorded", mock.topic)
		require.Len(t, mock.messages, 1)
		assert.Contains(t, string(mock.messages[0].Payload), `"id":"123"`)
		assert.NotEmpty(t, mock.messages[0].UUID)
	})

	t.Run("identified events keep their id as message uuid", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[identifiedEvent](mock, "usage.recorded")

		require.NoError(t, publish(&identifiedEvent{ID: "evt-1"}))
		require.NoError(t, publish(&identifiedEvent{}))

		require.Len(t, mock.messages, 2)
		assert.Equal(t, "evt-1", mock.messages[0].UUID)
		assert.NotEmpty(t, mock.messages[1].UUID, "empty ids fall back to a generated uuid")
	})

	t.Run("returns error when publish fails", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("publish error")}
		publish := messaging.NewPublishFunc[testEvent](mock, "usage.recorded")

		err := publish(&testEvent{ID: "123"})

		assert.Error(t, err)
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("returns underlying publisher", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		assert.Equal(t, mock, group.Publisher())
	})

	t.Run("returns error when close fails", func(t *testing.T) {
		mock := &mockPublisher{closeErr: errors.New("close error")}
		group := messaging.NewPublisherGroup(mock)

		assert.Error(t, group.Shutdown())
	})
}
