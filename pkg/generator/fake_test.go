package generator

import (
	"context"
	"iter"
	"sync"

	"github.com/rhuss/bedrockgen/pkg/provider"
)

// fakeInvoker returns canned results and records what it was asked.
type fakeInvoker struct {
	mu sync.Mutex

	completion string
	invokeErr  error
	requests   []provider.Request

	chunks    []string
	streamErr error
	streamIDs []string
	bodies    [][]byte

	// pulled counts chunks handed to the consumer; closed is set when the
	// sequence function returns.
	pulled int
	closed bool
}

func (f *fakeInvoker) Invoke(_ context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.invokeErr != nil {
		return "", f.invokeErr
	}
	return f.completion, nil
}

func (f *fakeInvoker) InvokeStream(ctx context.Context, modelID string, body []byte) iter.Seq2[provider.Chunk, error] {
	return func(yield func(provider.Chunk, error) bool) {
		f.mu.Lock()
		f.streamIDs = append(f.streamIDs, modelID)
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()

		defer func() {
			f.mu.Lock()
			f.closed = true
			f.mu.Unlock()
		}()

		for _, c := range f.chunks {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			f.mu.Lock()
			f.pulled++
			f.mu.Unlock()
			if !yield(provider.Chunk(c), nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield(nil, f.streamErr)
		}
	}
}

func (f *fakeInvoker) state() (pulled int, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulled, f.closed
}
