package credential

import (
	"context"
	"time"
)

// Repository is the durable allow-list.
type Repository interface {
	// Insert persists a new allowed record. It returns false without error when
	// the key already exists, revoked or not.
	Insert(ctx context.Context, record *Record) (inserted bool, err error)

	// Revoke marks the key revoked at the given time. Unknown and already
	// revoked keys are not an error.
	Revoke(ctx context.Context, key APIKey, at time.Time) error

	// Get returns the record for exactly this key or ErrNotFound.
	Get(ctx context.Context, key APIKey) (*Record, error)
}
