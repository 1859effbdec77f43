package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/keygate/internal/auth"
	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/usage"
)

// Tracker records a successful call to a protected operation.
type Tracker interface {
	Track(key credential.APIKey, endpoint usage.Endpoint)
}

// SignHandler serves the sign negation operation.
type SignHandler struct {
	tracker Tracker
}

// NewSignHandler creates a new sign handler.
func NewSignHandler(tracker Tracker) *SignHandler {
	return &SignHandler{tracker: tracker}
}

func (h *SignHandler) ChangeSign(ctx context.Context, req *ChangeSignRequest) (*ChangeSignResponse, error) {
	key, ok := auth.APIKeyFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	// Accounting runs in the background; the response does not wait for it.
	h.tracker.Track(key, usage.EndpointChangeSign)

	resp := &ChangeSignResponse{}
	resp.Body.Old = req.Value
	resp.Body.New = -req.Value

	return resp, nil
}
