package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/keygate/internal/auth"
	"github.com/serroba/keygate/internal/credential"
	"go.uber.org/zap"
)

// KeyService issues and revokes API keys.
type KeyService interface {
	Issue(ctx context.Context) (credential.APIKey, error)
	Revoke(ctx context.Context, key credential.APIKey) error
}

// KeyHandler handles API key lifecycle operations.
type KeyHandler struct {
	keys   KeyService
	logger *zap.Logger
}

// NewKeyHandler creates a new key handler.
func NewKeyHandler(keys KeyService, logger *zap.Logger) *KeyHandler {
	return &KeyHandler{keys: keys, logger: logger}
}

func (h *KeyHandler) IssueKey(ctx context.Context, _ *struct{}) (*IssueKeyResponse, error) {
	key, err := h.keys.Issue(ctx)
	if err != nil {
		h.logger.Error("failed to issue api key", zap.Error(err))

		if errors.Is(err, credential.ErrGeneration) {
			return nil, huma.Error500InternalServerError("failed to generate api key")
		}

		return nil, huma.Error500InternalServerError("failed to store api key")
	}

	h.logger.Info("api key issued")

	return &IssueKeyResponse{
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(string(key) + "\r\n"),
	}, nil
}

// RevokeKey revokes the key presented as the Basic username. The key is not
// validated first, so revoking an unknown or revoked key also succeeds.
func (h *KeyHandler) RevokeKey(ctx context.Context, _ *struct{}) (*struct{}, error) {
	key, ok := auth.APIKeyFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	if err := h.keys.Revoke(ctx, key); err != nil {
		h.logger.Error("failed to revoke api key", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to revoke api key")
	}

	h.logger.Info("api key revoked")

	return nil, nil
}
