package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const maxIssueAttempts = 5

// Events receives lifecycle notifications; *metrics.Metrics satisfies it.
type Events interface {
	KeyIssued()
	KeyRevoked()
}

// Service owns key issuance, revocation and validity checks.
type Service struct {
	repo     Repository
	generate Generator
	events   Events
	logger   *zap.Logger
	now      func() time.Time
}

type noEvents struct{}

func (noEvents) KeyIssued()  {}
func (noEvents) KeyRevoked() {}

// NewService creates a credential service backed by the given repository.
// events may be nil.
func NewService(repo Repository, generate Generator, events Events, logger *zap.Logger) *Service {
	if events == nil {
		events = noEvents{}
	}

	return &Service{
		repo:     repo,
		generate: generate,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a key and persists it as allowed before returning it.
// A key is only returned once the write has completed.
func (s *Service) Issue(ctx context.Context) (APIKey, error) {
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		key, err := s.newKey()
		if err != nil {
			return "", err
		}

		inserted, err := s.repo.Insert(ctx, &Record{Key: key, CreatedAt: s.now()})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStorage, err)
		}

		if inserted {
			s.events.KeyIssued()

			return key, nil
		}

		s.logger.Warn("generated api key collided with an existing key",
			zap.Int("attempt", attempt),
		)
	}

	return "", fmt.Errorf("%w: no unique key after %d attempts", ErrGeneration, maxIssueAttempts)
}

func (s *Service) newKey() (key APIKey, err error) {
	defer func() {
		if r := recover(); r != nil {
			key, err = "", fmt.Errorf("%w: %v", ErrGeneration, r)
		}
	}()

	raw := s.generate()
	if len(raw) < MinKeyLength {
		return "", fmt.Errorf("%w: generated key too short", ErrGeneration)
	}

	return APIKey(raw), nil
}

// Revoke permanently disables a key. Revoking an unknown or already revoked
// key succeeds.
func (s *Service) Revoke(ctx context.Context, key APIKey) error {
	if err := s.repo.Revoke(ctx, key, s.now()); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.events.KeyRevoked()

	return nil
}

// IsAllowed reports whether a non-revoked record exists for exactly this key.
func (s *Service) IsAllowed(ctx context.Context, key APIKey) (bool, error) {
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return record.Allowed(), nil
}
