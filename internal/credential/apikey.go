package credential

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when no record exists for a key.
	ErrNotFound = errors.New("api key not found")

	// ErrStorage wraps any failure of the durable medium.
	ErrStorage = errors.New("credential storage failure")

	// ErrGeneration is returned when a key could not be generated or was not unique.
	ErrGeneration = errors.New("api key generation failed")
)

// APIKey is an opaque bearer token identifying a caller.
type APIKey string

// Record is the persisted state of an issued key.
type Record struct {
	Key       APIKey
	CreatedAt time.Time
	RevokedAt *time.Time // nil while the key is allowed
}

// Allowed reports whether the record grants access.
func (r *Record) Allowed() bool {
	return r != nil && r.RevokedAt == nil
}
