// Package usage accounts for calls to protected operations: an in-memory
// per-endpoint aggregate and a best-effort durable event log.
package usage

import (
	"context"
	"time"

	"github.com/serroba/keygate/internal/credential"
)

// Endpoint identifies a protected operation for accounting.
type Endpoint string

// EndpointChangeSign is the sign negation operation.
const EndpointChangeSign Endpoint = "change_sign"

// Endpoints lists every tracked endpoint.
var Endpoints = []Endpoint{EndpointChangeSign}

// TopicUsageRecorded is the stream topic carrying usage events.
const TopicUsageRecorded = "usage.recorded"

// Event is an immutable record of one successful call.
type Event struct {
	ID       string            `json:"id"`
	APIKey   credential.APIKey `json:"apiKey"`
	Endpoint Endpoint          `json:"endpoint"`
	CalledAt time.Time         `json:"calledAt"`
}

// EventStore appends usage events to durable storage.
type EventStore interface {
	AppendUsageEvent(ctx context.Context, event *Event) error
}

// MessageID reuses the event ID as the stream message UUID.
func (e Event) MessageID() string {
	return e.ID
}
