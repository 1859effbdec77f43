package handlers

import (
	"context"

	"github.com/serroba/keygate/internal/usage"
)

// UsageCounters exposes the in-memory call aggregate.
type UsageCounters interface {
	SnapshotAndReset() map[usage.Endpoint]uint64
	Reset()
}

// UsageHandler serves usage statistics.
type UsageHandler struct {
	counters UsageCounters
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(counters UsageCounters) *UsageHandler {
	return &UsageHandler{counters: counters}
}

// Statistics returns the counts since the previous read and zeroes them.
func (h *UsageHandler) Statistics(_ context.Context, _ *struct{}) (*UsageStatisticsResponse, error) {
	snapshot := h.counters.SnapshotAndReset()

	resp := &UsageStatisticsResponse{Body: make(map[string]uint64, len(snapshot))}
	for endpoint, n := range snapshot {
		resp.Body[string(endpoint)] = n
	}

	return resp, nil
}

func (h *UsageHandler) ResetStatistics(_ context.Context, _ *struct{}) (*struct{}, error) {
	h.counters.Reset()

	return nil, nil
}
