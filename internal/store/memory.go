package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/usage"
)

// MemoryStore is an in-memory implementation of credential.Repository and
// usage.EventStore.
type MemoryStore struct {
	mu     sync.RWMutex
	keys   map[credential.APIKey]credential.Record
	events []usage.Event
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys: make(map[credential.APIKey]credential.Record),
	}
}

func (m *MemoryStore) Insert(_ context.Context, record *credential.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.keys[record.Key]; exists {
		return false, nil
	}

	m.keys[record.Key] = *record

	return true, nil
}

func (m *MemoryStore) Revoke(_ context.Context, key credential.APIKey, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.keys[key]
	if !ok || record.RevokedAt != nil {
		return nil
	}

	record.RevokedAt = &at
	m.keys[key] = record

	return nil
}

func (m *MemoryStore) Get(_ context.Context, key credential.APIKey) (*credential.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.keys[key]
	if !ok {
		return nil, credential.ErrNotFound
	}

	return &record, nil
}

func (m *MemoryStore) AppendUsageEvent(_ context.Context, event *usage.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, *event)

	return nil
}

// UsageEvents returns a copy of the appended events.
func (m *MemoryStore) UsageEvents() []usage.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]usage.Event, len(m.events))
	copy(out, m.events)

	return out
}

// Migrate is a no-op; the maps are ready on construction.
func (m *MemoryStore) Migrate(_ context.Context) error {
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
