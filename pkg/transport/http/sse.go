package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/observability"
	"github.com/rhuss/bedrockgen/pkg/transport"
)

// writerState tracks the state of an SSE ResponseWriter.
type writerState int

const (
	writerIdle      writerState = iota // Initial state, no writes yet
	writerStreaming                    // WriteEvent has been called at least once
	writerCompleted                    // [DONE] or error frame sent, or WriteResponse called
)

// sseResponseWriter implements transport.ResponseWriter for HTTP/SSE responses.
// It handles both streaming (SSE) and non-streaming (JSON) output.
//
// Each stream event is written as a single data frame:
//
//	data: {"message":"...","finish_reason":null}\n
//	\n
//
// A successful stream ends with "data: [DONE]". A stream that fails after
// the first event ends with an "event: error" frame instead.
type sseResponseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu     sync.Mutex
	state  writerState
	gauged bool
}

var _ transport.ResponseWriter = (*sseResponseWriter)(nil)

func newSSEResponseWriter(w http.ResponseWriter) *sseResponseWriter {
	return &sseResponseWriter{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// startStream sets the SSE headers. Caller holds mu.
func (s *sseResponseWriter) startStream() {
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.state = writerStreaming

	observability.StreamingConnections.Inc()
	s.gauged = true
}

// WriteEvent sends a single SSE data frame and flushes it.
func (s *sseResponseWriter) WriteEvent(ctx context.Context, event api.StreamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerCompleted {
		return errors.New("cannot write event: writer is completed")
	}
	if s.state == writerIdle {
		s.startStream()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	return nil
}

// WriteResponse sends a complete non-streaming JSON response.
// This is mutually exclusive with WriteEvent.
func (s *sseResponseWriter) WriteResponse(ctx context.Context, resp *api.GenerateResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerStreaming {
		return errors.New("cannot write response: streaming has already started")
	}
	if s.state == writerCompleted {
		return errors.New("cannot write response: writer is completed")
	}

	s.w.Header().Set("Content-Type", "application/json")
	s.state = writerCompleted

	if err := json.NewEncoder(s.w).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	return nil
}

// Flush ensures buffered data is sent to the client.
func (s *sseResponseWriter) Flush() error {
	return s.rc.Flush()
}

// finishStream terminates a successful stream with [DONE]. A stream that
// produced no events still gets SSE headers so clients see an empty stream.
func (s *sseResponseWriter) finishStream() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.release()

	switch s.state {
	case writerCompleted:
		return nil
	case writerIdle:
		s.startStream()
	}

	s.state = writerCompleted
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("failed to write [DONE]: %w", err)
	}
	return s.rc.Flush()
}

// failStream sends an error frame on a stream that has already started.
func (s *sseResponseWriter) failStream(apiErr *api.APIError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.release()

	if s.state != writerStreaming {
		return errors.New("cannot write error event: stream not active")
	}
	s.state = writerCompleted

	data, err := json.Marshal(api.ErrorResponse{Error: apiErr})
	if err != nil {
		return fmt.Errorf("failed to marshal error: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write error event: %w", err)
	}
	return s.rc.Flush()
}

// release decrements the streaming gauge once. Caller holds mu.
func (s *sseResponseWriter) release() {
	if s.gauged {
		observability.StreamingConnections.Dec()
		s.gauged = false
	}
}

// hasStartedStreaming returns true if at least one SSE event has been written.
func (s *sseResponseWriter) hasStartedStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == writerStreaming
}
