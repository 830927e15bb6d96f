package bedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// Runtime is the part of the Bedrock runtime API that Client depends on.
// The production implementation wraps *bedrockruntime.Client; tests supply
// fakes.
type Runtime interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error)
	OpenStream(ctx context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput) (EventStream, error)
}

// EventStream is an open response stream. Events is closed by the
// implementation when the stream ends; Err reports why it ended abnormally.
// Close must be safe to call more than once.
type EventStream interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

type sdkRuntime struct {
	client *bedrockruntime.Client
}

func (r *sdkRuntime) InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
	return r.client.InvokeModel(ctx, in)
}

func (r *sdkRuntime) OpenStream(ctx context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput) (EventStream, error) {
	out, err := r.client.InvokeModelWithResponseStream(ctx, in)
	if err != nil {
		return nil, err
	}
	return out.GetStream(), nil
}

var _ EventStream = (*bedrockruntime.InvokeModelWithResponseStreamEventStream)(nil)
