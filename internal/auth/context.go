package auth

import (
	"context"

	"github.com/serroba/keygate/internal/credential"
)

type apiKeyKey struct{}

// ContextWithAPIKey stores the authenticated key in the context.
func ContextWithAPIKey(ctx context.Context, key credential.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyKey{}, key)
}

// APIKeyFromContext returns the key stored by ContextWithAPIKey.
func APIKeyFromContext(ctx context.Context) (credential.APIKey, bool) {
	key, ok := ctx.Value(apiKeyKey{}).(credential.APIKey)

	return key, ok
}
