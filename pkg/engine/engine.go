package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/debug"
	"github.com/rhuss/bedrockgen/pkg/generator"
	"github.com/rhuss/bedrockgen/pkg/transport"
)

// FinishReasonStop is reported on the single event emitted for generators
// that cannot stream.
const FinishReasonStop = "stop"

// Engine orchestrates request processing between the transport layer
// and the generators. It implements transport.GenerateHandler and
// transport.GeneratorLister.
type Engine struct {
	registry *generator.Registry
	cfg      Config
}

var (
	_ transport.GenerateHandler = (*Engine)(nil)
	_ transport.GeneratorLister = (*Engine)(nil)
)

// New creates a new Engine. The registry must not be nil.
func New(reg *generator.Registry, cfg Config) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("engine: registry must not be nil")
	}
	if cfg.DefaultGenerator != "" {
		if _, err := reg.Get(cfg.DefaultGenerator); err != nil {
			return nil, fmt.Errorf("engine: default generator: %w", err)
		}
	}
	return &Engine{registry: reg, cfg: cfg}, nil
}

// ListGenerators returns the registered generators sorted by name.
func (e *Engine) ListGenerators(_ context.Context) []api.GeneratorInfo {
	return e.registry.List()
}

// Generate handles a streaming or non-streaming generate request.
func (e *Engine) Generate(ctx context.Context, req *api.GenerateRequest, w transport.ResponseWriter) error {
	if apiErr := api.ValidateRequest(req, e.cfg.validation()); apiErr != nil {
		return apiErr
	}

	g, err := e.resolve(req.Generator)
	if err != nil {
		return err
	}
	info := g.Info()

	debug.Log("engine", "generate",
		"generator", info.Name, "stream", req.Stream,
		"queries", len(req.Queries), "context", len(req.Context), "turns", len(req.Conversation))

	if req.Stream {
		if !info.Streamable {
			return e.generateSingleEvent(ctx, g, req, w)
		}
		return e.generateStream(ctx, g, req, w)
	}

	msg, err := g.Generate(ctx, req.Queries, req.Context, req.Conversation)
	if err != nil {
		return err
	}

	return w.WriteResponse(ctx, &api.GenerateResponse{
		Generator: info.Name,
		Message:   msg,
	})
}

// generateStream forwards each generator event to the writer. Breaking out
// of the range loop on a write error releases the upstream stream.
func (e *Engine) generateStream(ctx context.Context, g generator.Generator, req *api.GenerateRequest, w transport.ResponseWriter) error {
	events := 0
	for ev, err := range g.GenerateStream(ctx, req.Queries, req.Context, req.Conversation) {
		if err != nil {
			return err
		}
		if err := w.WriteEvent(ctx, ev); err != nil {
			return err
		}
		events++
	}

	debug.Log("engine", "stream finished", "generator", g.Info().Name, "events", events)
	return nil
}

// generateSingleEvent serves a stream request from a generator that
// cannot stream, as one event carrying the whole answer.
func (e *Engine) generateSingleEvent(ctx context.Context, g generator.Generator, req *api.GenerateRequest, w transport.ResponseWriter) error {
	msg, err := g.Generate(ctx, req.Queries, req.Context, req.Conversation)
	if err != nil {
		return err
	}

	stop := FinishReasonStop
	return w.WriteEvent(ctx, api.StreamEvent{Message: msg, FinishReason: &stop})
}

func (e *Engine) resolve(name string) (generator.Generator, error) {
	if name == "" {
		name = e.cfg.DefaultGenerator
	}

	if name == "" {
		infos := e.registry.List()
		if len(infos) != 1 {
			return nil, api.NewInvalidRequestError("generator", "generator is required")
		}
		name = infos[0].Name
	}

	g, err := e.registry.Get(name)
	if errors.Is(err, generator.ErrUnknownGenerator) {
		return nil, api.NewNotFoundError("generator not found: " + name)
	}
	return g, err
}
