package transport

import (
	"context"

	"github.com/rhuss/bedrockgen/pkg/api"
)

// GenerateHandler handles the generate operation. The implementation
// receives a request and writes the result (stream events or a complete
// response) to the ResponseWriter.
type GenerateHandler interface {
	Generate(ctx context.Context, req *api.GenerateRequest, w ResponseWriter) error
}

// GenerateHandlerFunc is an adapter that allows using an ordinary function
// as a GenerateHandler.
type GenerateHandlerFunc func(ctx context.Context, req *api.GenerateRequest, w ResponseWriter) error

// Generate calls f(ctx, req, w).
func (f GenerateHandlerFunc) Generate(ctx context.Context, req *api.GenerateRequest, w ResponseWriter) error {
	return f(ctx, req, w)
}

// GeneratorLister lists the generators available to clients.
type GeneratorLister interface {
	ListGenerators(ctx context.Context) []api.GeneratorInfo
}

// ResponseWriter abstracts streaming and non-streaming output for the handler.
// The transport layer creates a ResponseWriter for each request and provides
// it to the handler. The handler uses WriteEvent for streaming responses or
// WriteResponse for non-streaming responses.
//
// WriteEvent and WriteResponse are mutually exclusive on a single writer
// instance. Calling WriteEvent after WriteResponse (or vice versa) returns
// an error.
type ResponseWriter interface {
	// WriteEvent sends a single streaming event.
	WriteEvent(ctx context.Context, event api.StreamEvent) error

	// WriteResponse sends a complete non-streaming response.
	WriteResponse(ctx context.Context, resp *api.GenerateResponse) error

	// Flush ensures buffered data is sent to the client. Returns an error
	// if the client has disconnected.
	Flush() error
}
