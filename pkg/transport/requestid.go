package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/rhuss/bedrockgen/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// request. If the incoming request context already carries a request ID
// (set by the HTTP adapter from the X-Request-ID header), that value is
// used. Otherwise, a new random UUID is generated.
//
// The request ID is stored in the context and can be retrieved with
// RequestIDFromContext.
func RequestID() Middleware {
	return func(next GenerateHandler) GenerateHandler {
		return GenerateHandlerFunc(func(ctx context.Context, req *api.GenerateRequest, w ResponseWriter) error {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, NewRequestID())
			}
			return next.Generate(ctx, req, w)
		})
	}
}

// NewRequestID returns a new random request ID.
func NewRequestID() string {
	return uuid.NewString()
}
