package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/keygate/internal/auth"
	"github.com/serroba/keygate/internal/credential"
	"go.uber.org/zap"
)

// MetadataKeyAuth is the operation metadata key holding an AuthMode.
const MetadataKeyAuth = "auth"

// AuthMode says what an operation requires from the caller's credential.
type AuthMode int

const (
	// AuthValidated requires a key that is currently allowed.
	AuthValidated AuthMode = iota + 1
	// AuthPresented requires a key to be present but does not check it.
	AuthPresented
)

const challenge = `Basic realm="api"`

// KeyValidator decides whether a key may call protected operations.
type KeyValidator interface {
	Validate(ctx context.Context, key credential.APIKey) error
}

// RequireAPIKey returns a Huma middleware enforcing the AuthMode declared in
// an operation's metadata. The key is taken from the HTTP Basic username and
// stored in the request context for handlers.
func RequireAPIKey(api huma.API, validator KeyValidator, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		mode := authMode(ctx)
		if mode == 0 {
			next(ctx)

			return
		}

		key, ok := auth.KeyFromBasicAuth(ctx.Header("Authorization"))
		if !ok {
			unauthorized(api, ctx)

			return
		}

		if mode == AuthValidated {
			if err := validator.Validate(ctx.Context(), key); err != nil {
				if errors.Is(err, auth.ErrDenied) {
					unauthorized(api, ctx)

					return
				}

				logger.Error("authorization unavailable", zap.String("path", operationPath(ctx)), zap.Error(err))
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")

				return
			}
		}

		next(huma.WithContext(ctx, auth.ContextWithAPIKey(ctx.Context(), key)))
	}
}

func authMode(ctx huma.Context) AuthMode {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return 0
	}

	mode, _ := op.Metadata[MetadataKeyAuth].(AuthMode)

	return mode
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

func unauthorized(api huma.API, ctx huma.Context) {
	ctx.SetHeader("WWW-Authenticate", challenge)
	_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
}
