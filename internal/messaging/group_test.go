package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/keygate/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRunnable struct {
	started     bool
	shutdown    bool
	startErr    error
	shutdownErr error
}

func (m *mockRunnable) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockRunnable) Shutdown() error {
	m.shutdown = true

	return m.shutdownErr
}

type orderedRunnable struct {
	name  string
	order *[]string
}

func (r *orderedRunnable) Start(context.Context) error { return nil }

func (r *orderedRunnable) Shutdown() error {
	*r.order = append(*r.order, r.name)

	return nil
}

func TestConsumerGroup_Start(t *testing.T) {
	t.Run("starts all consumers", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		consumer1 := &mockRunnable{}
		consumer2 := &mockRunnable{}

		group.Add(consumer1)
		group.Add(consumer2)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, consumer1.started)
		assert.True(t, consumer2.started)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		consumer1 := &mockRunnable{}
		consumer2 := &mockRunnable{startErr: errors.New("start error")}

		group.Add(consumer1)
		group.Add(consumer2)

		err := group.Start(context.Background())

		require.Error(t, err)
		assert.True(t, consumer1.shutdown)
		assert.False(t, consumer2.started)
		assert.False(t, consumer2.shutdown, "the consumer that failed to start is not stopped")
	})
}

func TestConsumerGroup_Shutdown(t *testing.T) {
	t.Run("stops consumers newest first", func(t *testing.T) {
		var order []string

		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		group.Add(&orderedRunnable{name: "first", order: &order})
		group.Add(&orderedRunnable{name: "second", order: &order})

		require.NoError(t, group.Start(context.Background()))
		require.NoError(t, group.Shutdown())

		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("shuts down consumers and subscriber", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		consumer := &mockRunnable{}

		group.Add(consumer)
		_ = group.Start(context.Background())

		require.NoError(t, group.Shutdown())
		assert.True(t, consumer.shutdown)
		assert.True(t, sub.closed)
	})

	t.Run("joins errors but still stops everything", func(t *testing.T) {
		sub := newMockSubscriber()
		sub.closeErr = errors.New("close error")
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		consumer1 := &mockRunnable{shutdownErr: errors.New("shutdown error 1")}
		consumer2 := &mockRunnable{shutdownErr: errors.New("shutdown error 2")}

		group.Add(consumer1)
		group.Add(consumer2)
		_ = group.Start(context.Background())

		err := group.Shutdown()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "shutdown error 1")
		assert.Contains(t, err.Error(), "shutdown error 2")
		assert.Contains(t, err.Error(), "close error")
		assert.True(t, consumer2.shutdown)
	})
}
