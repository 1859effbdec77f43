package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/keygate/internal/middleware"
	"github.com/serroba/keygate/internal/ratelimit"
)

// RegisterRoutes registers the key lifecycle, protected and usage routes.
func RegisterRoutes(api huma.API, keys *KeyHandler, sign *SignHandler, stats *UsageHandler) {
	// GET /api-key - Issue a new key, limited per client
	huma.Register(api, huma.Operation{
		OperationID: "issue-api-key",
		Method:      http.MethodGet,
		Path:        "/api-key",
		Summary:     "Issue API key",
		Description: "Issues a new API key. Use it as the HTTP Basic username on protected operations.",
		Tags:        []string{"Keys"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Name: "issue-api-key"},
		},
	}, keys.IssueKey)

	// DELETE /api-key - Revoke the presented key
	huma.Register(api, huma.Operation{
		OperationID:   "revoke-api-key",
		Method:        http.MethodDelete,
		Path:          "/api-key",
		Summary:       "Revoke API key",
		Description:   "Permanently revokes the key given as the HTTP Basic username.",
		Tags:          []string{"Keys"},
		DefaultStatus: http.StatusNoContent,
		Metadata: map[string]any{
			middleware.MetadataKeyAuth: middleware.AuthPresented,
		},
	}, keys.RevokeKey)

	// GET /api/change-sign/{value} - Protected operation driving usage accounting
	huma.Register(api, huma.Operation{
		OperationID: "change-sign",
		Method:      http.MethodGet,
		Path:        "/api/change-sign/{value}",
		Summary:     "Negate a number",
		Tags:        []string{"API"},
		Metadata: map[string]any{
			middleware.MetadataKeyAuth: middleware.AuthValidated,
		},
	}, sign.ChangeSign)

	huma.Register(api, huma.Operation{
		OperationID: "usage-statistics",
		Method:      http.MethodGet,
		Path:        "/usage-statistics",
		Summary:     "Read and reset usage statistics",
		Tags:        []string{"Usage"},
	}, stats.Statistics)

	huma.Register(api, huma.Operation{
		OperationID:   "reset-usage-statistics",
		Method:        http.MethodPost,
		Path:          "/reset-usage-statistics",
		Summary:       "Reset usage statistics",
		Tags:          []string{"Usage"},
		DefaultStatus: http.StatusNoContent,
	}, stats.ResetStatistics)
}
