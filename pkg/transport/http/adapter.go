package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/transport"
)

// Adapter serves the generate API over HTTP.
// It routes requests to the handler and serializes responses.
type Adapter struct {
	handler transport.GenerateHandler
	lister  transport.GeneratorLister
	mux     *http.ServeMux
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 10 << 20, // 10 MB
	}
}

// NewAdapter creates an HTTP adapter for the given handler. The lister is
// optional; when nil, GET /v1/generators returns an empty list.
// Middleware is applied to the handler in the given order.
func NewAdapter(handler transport.GenerateHandler, lister transport.GeneratorLister, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		handler = transport.Chain(middlewares...)(handler)
	}

	a := &Adapter{
		handler: handler,
		lister:  lister,
		mux:     http.NewServeMux(),
		config:  cfg,
	}

	a.mux.HandleFunc("POST /v1/generate", a.handleGenerate)
	a.mux.HandleFunc("GET /v1/generators", a.handleListGenerators)
	a.mux.HandleFunc("GET /healthz", handleHealth)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// HTTP-level middleware for request ID propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(a.mux)
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. A client-supplied ID is used as is; otherwise a new
// one is generated here so that it can be echoed in the response headers.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = transport.NewRequestID()
		}
		r = r.WithContext(transport.ContextWithRequestID(r.Context(), id))
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// handleGenerate handles POST /v1/generate.
func (a *Adapter) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	rw := newSSEResponseWriter(w)

	if req.Stream {
		a.handleStreaming(w, r, &req, rw)
		return
	}

	if err := a.handler.Generate(r.Context(), &req, rw); err != nil {
		a.writeHandlerError(r.Context(), w, rw, err)
	}
}

// handleStreaming runs a stream request and terminates the SSE stream.
func (a *Adapter) handleStreaming(w http.ResponseWriter, r *http.Request, req *api.GenerateRequest, rw *sseResponseWriter) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := a.handler.Generate(ctx, req, rw); err != nil {
		a.writeHandlerError(ctx, w, rw, err)
		return
	}

	if err := rw.finishStream(); err != nil {
		slog.Debug("finishing stream", "request_id", transport.RequestIDFromContext(ctx), "error", err)
	}
}

// handleListGenerators handles GET /v1/generators.
func (a *Adapter) handleListGenerators(w http.ResponseWriter, r *http.Request) {
	list := api.GeneratorList{Object: "list", Data: []api.GeneratorInfo{}}
	if a.lister != nil {
		if infos := a.lister.ListGenerators(r.Context()); infos != nil {
			list.Data = infos
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// writeHandlerError writes an error response from the handler. If streaming
// has already started, it sends an error event. Otherwise it writes a
// standard JSON error response.
func (a *Adapter) writeHandlerError(ctx context.Context, w http.ResponseWriter, rw *sseResponseWriter, err error) {
	apiErr := transport.APIErrorFrom(err)

	if rw.hasStartedStreaming() {
		if werr := rw.failStream(apiErr); werr != nil {
			slog.Debug("writing stream error event", "request_id", transport.RequestIDFromContext(ctx), "error", werr)
		}
		return
	}

	transport.WriteAPIError(w, apiErr)
}
