package bedrock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// fakeStream feeds a fixed list of events from a producer goroutine that
// stops as soon as Close is called.
type fakeStream struct {
	events chan types.ResponseStream
	done   chan struct{}
	once   sync.Once
	err    error

	mu     sync.Mutex
	closed int
}

func newFakeStream(events []types.ResponseStream, err error) *fakeStream {
	s := &fakeStream{
		events: make(chan types.ResponseStream),
		done:   make(chan struct{}),
		err:    err,
	}
	go func() {
		defer close(s.events)
		for _, e := range events {
			select {
			case s.events <- e:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

func (s *fakeStream) Events() <-chan types.ResponseStream { return s.events }

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.done) })
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Err() error { return s.err }

func (s *fakeStream) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeRuntime records requests and returns canned responses.
type fakeRuntime struct {
	mu sync.Mutex

	invokeIn  *bedrockruntime.InvokeModelInput
	invokeOut *bedrockruntime.InvokeModelOutput
	invokeErr error

	streamIn  *bedrockruntime.InvokeModelWithResponseStreamInput
	stream    *fakeStream
	streamErr error
	opens     int
}

func (f *fakeRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invokeIn = in
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	return f.invokeOut, nil
}

func (f *fakeRuntime) OpenStream(_ context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput) (EventStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamIn = in
	f.opens++
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.stream, nil
}

func (f *fakeRuntime) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func chunkEvent(payload string) types.ResponseStream {
	return &types.ResponseStreamMemberChunk{Value: types.PayloadPart{Bytes: []byte(payload)}}
}
