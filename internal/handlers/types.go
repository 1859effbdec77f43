package handlers

import (
	"math"

	"github.com/danielgtaylor/huma/v2"
)

// IssueKeyResponse carries a freshly issued key as plain text.
type IssueKeyResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// ChangeSignRequest is the request for negating a number.
type ChangeSignRequest struct {
	Value float64 `doc:"The number to negate" example:"42" path:"value"`
}

// Resolve rejects NaN and infinities, which have no JSON encoding.
func (r *ChangeSignRequest) Resolve(_ huma.Context) []error {
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return []error{&huma.ErrorDetail{
			Location: "path.value",
			Message:  "value must be a finite number",
		}}
	}

	return nil
}

// ChangeSignResponse holds the input and its negation.
type ChangeSignResponse struct {
	Body struct {
		Old float64 `doc:"The requested value" example:"42"  json:"old"`
		New float64 `doc:"The negated value"   example:"-42" json:"new"`
	}
}

// UsageStatisticsResponse holds per-endpoint call counts since the last read.
type UsageStatisticsResponse struct {
	Body map[string]uint64 `doc:"Calls per endpoint since the previous read or reset"`
}
