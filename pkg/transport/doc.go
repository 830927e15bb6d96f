// Package transport defines the handler interfaces and middleware chain for
// the bedrockgen HTTP/SSE surface.
//
// The transport layer bridges external clients and the generator engine. It
// deserializes incoming requests into the types defined in pkg/api,
// dispatches them for processing, and serializes results back to the client
// in either synchronous (JSON) or streaming (SSE) format.
//
// # Handler Interfaces
//
//   - GenerateHandler runs one generation request and writes the answer or
//     its stream events to a ResponseWriter.
//   - GeneratorLister reports the generators a deployment offers.
//
// The ResponseWriter interface abstracts streaming and non-streaming output,
// allowing the handler to emit SSE events or a complete JSON response without
// knowing the underlying transport protocol.
//
// # Middleware
//
// The middleware chain wraps GenerateHandler with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog.
//
// # Errors
//
// APIErrorFrom is the single place where handler errors become client-facing
// api.APIError values. Bedrock service errors are recognized through the
// smithy APIError interface and keep their error code.
package transport
