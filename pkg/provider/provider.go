package provider

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
)

// Content types used for model invocation.
const (
	ContentTypeJSON = "application/json"
)

// Request is a single blocking model invocation. It is built per call and
// not modified afterwards.
type Request struct {
	ModelID     string
	Body        []byte
	Accept      string
	ContentType string
}

// Chunk is the JSON object carried by one streamed frame. It is yielded once
// and not retained by the transport.
type Chunk = json.RawMessage

// Invoker abstracts a hosted inference endpoint.
//
// Implementations must be safe for concurrent use. Errors from the endpoint,
// the network, or response decoding are returned as produced; Invoker does
// not retry or reclassify them.
type Invoker interface {
	// Invoke sends a blocking request and returns the completion text.
	Invoke(ctx context.Context, req Request) (string, error)

	// InvokeStream returns a single-use, order-preserving sequence of chunks.
	// The request is sent when the first element is pulled. The underlying
	// connection is released when the sequence ends, when the consumer stops
	// early, or when ctx is cancelled. A failure is yielded as the last
	// element.
	InvokeStream(ctx context.Context, modelID string, body []byte) iter.Seq2[Chunk, error]
}

// Sentinel errors. Callers should use errors.Is.
var (
	ErrMalformedChunk = errors.New("provider: streamed chunk is not a JSON object")
	ErrStreamConsumed = errors.New("provider: stream already consumed")
)
