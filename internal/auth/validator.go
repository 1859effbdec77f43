// Package auth decides whether an inbound credential may call protected operations.
package auth

import (
	"context"
	"errors"

	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/metrics"
	"go.uber.org/zap"
)

// ErrDenied is returned for absent, unknown or revoked credentials.
var ErrDenied = errors.New("credential not authorized")

// KeyChecker reports whether a key is currently allowed.
type KeyChecker interface {
	IsAllowed(ctx context.Context, key credential.APIKey) (bool, error)
}

// Validator is the single authorization choke point. It never caches decisions.
type Validator struct {
	keys    KeyChecker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewValidator creates a validator reading from the given key checker.
func NewValidator(keys KeyChecker, m *metrics.Metrics, logger *zap.Logger) *Validator {
	return &Validator{
		keys:    keys,
		metrics: m,
		logger:  logger,
	}
}

// Validate returns nil to allow, ErrDenied to deny, or the storage error.
// Storage failures are never reported as a denial.
func (v *Validator) Validate(ctx context.Context, key credential.APIKey) error {
	if key == "" {
		v.metrics.ObserveValidation(metrics.OutcomeDeny)

		return ErrDenied
	}

	allowed, err := v.keys.IsAllowed(ctx, key)
	if err != nil {
		v.metrics.ObserveValidation(metrics.OutcomeError)
		v.logger.Error("api key validation failed", zap.Error(err))

		return err
	}

	if !allowed {
		v.metrics.ObserveValidation(metrics.OutcomeDeny)

		return ErrDenied
	}

	v.metrics.ObserveValidation(metrics.OutcomeAllow)

	return nil
}
