package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/rhuss/bedrockgen/pkg/debug"
	"github.com/rhuss/bedrockgen/pkg/provider"
)

// InvokeStream returns a lazy sequence over the chunks of an
// InvokeModelWithResponseStream call.
//
// Nothing is sent until the first element is pulled. Each chunk frame's bytes
// must hold a JSON object; anything else ends the sequence with
// provider.ErrMalformedChunk. Non-chunk events are skipped. The event stream
// is closed on every exit path. Ranging over the sequence a second time
// yields provider.ErrStreamConsumed.
func (c *Client) InvokeStream(ctx context.Context, modelID string, body []byte) iter.Seq2[provider.Chunk, error] {
	var used atomic.Bool

	return func(yield func(provider.Chunk, error) bool) {
		if used.Swap(true) {
			yield(nil, provider.ErrStreamConsumed)
			return
		}

		debug.Log("streaming", "opening stream", "model", modelID, "body_bytes", len(body))

		stream, err := c.runtime.OpenStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
			ModelId: aws.String(modelID),
			Body:    body,
		})
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() {
			if err := stream.Close(); err != nil {
				debug.Log("streaming", "closing stream", "error", err)
			}
		}()

		events := stream.Events()
		var n int
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			var (
				event types.ResponseStream
				ok    bool
			)
			select {
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			case event, ok = <-events:
			}

			if !ok {
				if err := stream.Err(); err != nil {
					yield(nil, err)
					return
				}
				debug.Log("streaming", "stream ended", "model", modelID, "chunks", n)
				return
			}

			chunk, isChunk, err := decodeEvent(event)
			if err != nil {
				yield(nil, err)
				return
			}
			if !isChunk {
				continue
			}

			n++
			if !yield(chunk, nil) {
				debug.Log("streaming", "consumer stopped early", "model", modelID, "chunks", n)
				return
			}
		}
	}
}

// decodeEvent extracts the JSON payload of a chunk event. The boolean is
// false for events that carry no chunk.
func decodeEvent(event types.ResponseStream) (provider.Chunk, bool, error) {
	switch v := event.(type) {
	case *types.ResponseStreamMemberChunk:
		chunk, err := decodeChunk(v.Value.Bytes)
		if err != nil {
			return nil, false, err
		}
		return chunk, true, nil
	case *types.UnknownUnionMember:
		debug.Log("streaming", "skipping unknown stream event", "tag", v.Tag)
		return nil, false, nil
	default:
		debug.Log("streaming", "skipping stream event", "type", fmt.Sprintf("%T", event))
		return nil, false, nil
	}
}

// decodeChunk checks that b holds a single JSON object and returns it.
func decodeChunk(b []byte) (provider.Chunk, error) {
	if debug.TraceIsEnabled("streaming") {
		debug.Trace("streaming", "raw chunk", "bytes", string(b))
	}

	trimmed := bytes.TrimSpace(b)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrMalformedChunk, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: got null", provider.ErrMalformedChunk)
	}

	out := make([]byte, len(trimmed))
	copy(out, trimmed)
	return provider.Chunk(out), nil
}
