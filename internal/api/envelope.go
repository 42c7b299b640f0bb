package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/nichehunt/nichehunt-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the shared envelope
// so typed operations and the plain handlers (avatars, health) produce the
// same JSON shape. Errors keep their status while gaining the envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if v == nil {
		return &response.Envelope{Success: true}, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &response.Envelope{
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	return &response.Envelope{Success: true, Data: v}, nil
}
