package generator

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/debug"
	"github.com/rhuss/bedrockgen/pkg/provider"
)

// Claude2 defaults.
const (
	Claude2Name          = "Claude2Generator"
	Claude2Description   = "Generator using Bedrock model"
	Claude2Model         = "anthropic.claude-v2"
	Claude2ContextWindow = 10000
)

// Claude2 generates answers with an Anthropic Claude model hosted on Bedrock.
type Claude2 struct {
	invoker provider.Invoker
	info    Info
	params  Params
	system  string
	format  StreamFormat
}

var _ Generator = (*Claude2)(nil)

// Option configures a Claude2 generator.
type Option func(*Claude2)

// WithName sets the registry name.
func WithName(name string) Option {
	return func(g *Claude2) { g.info.Name = name }
}

// WithModel sets the Bedrock model id.
func WithModel(model string) Option {
	return func(g *Claude2) { g.info.ModelName = model }
}

// WithDescription sets the human-readable description.
func WithDescription(d string) Option {
	return func(g *Claude2) { g.info.Description = d }
}

// WithStreamable sets whether hosts should use GenerateStream.
func WithStreamable(streamable bool) Option {
	return func(g *Claude2) { g.info.Streamable = streamable }
}

// WithContextWindow sets the advertised context window.
func WithContextWindow(n int) Option {
	return func(g *Claude2) { g.info.ContextWindow = n }
}

// WithParams sets the sampling parameters.
func WithParams(p Params) Option {
	return func(g *Claude2) { g.params = p }
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(s string) Option {
	return func(g *Claude2) { g.system = s }
}

// WithStreamFormat selects the chunk decoder used by GenerateStream.
func WithStreamFormat(f StreamFormat) Option {
	return func(g *Claude2) { g.format = f }
}

// NewClaude2 creates a Claude2 generator calling inv.
func NewClaude2(inv provider.Invoker, opts ...Option) *Claude2 {
	g := &Claude2{
		invoker: inv,
		info: Info{
			Name:          Claude2Name,
			Description:   Claude2Description,
			Streamable:    false,
			ModelName:     Claude2Model,
			ContextWindow: Claude2ContextWindow,
		},
		params: DefaultParams(),
		system: DefaultSystemPrompt,
		format: StreamFormatChat,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Info returns the generator metadata.
func (g *Claude2) Info() Info { return g.info }

// PrepareRequest serializes the request body with this generator's system
// prompt and sampling parameters.
func (g *Claude2) PrepareRequest(queries, snippets []string, conversation []api.ConversationTurn) ([]byte, error) {
	return prepareRequest(g.system, g.params, queries, snippets, conversation)
}

// Generate invokes the model and returns its completion.
func (g *Claude2) Generate(ctx context.Context, queries, snippets []string, conversation []api.ConversationTurn) (string, error) {
	body, err := g.PrepareRequest(queries, snippets, conversation)
	if err != nil {
		return "", err
	}

	debug.Log("generator", "generate",
		"generator", g.info.Name, "model", g.info.ModelName,
		"queries", len(queries), "context", len(snippets), "turns", len(conversation))

	return g.invoker.Invoke(ctx, provider.Request{
		ModelID:     g.info.ModelName,
		Body:        body,
		Accept:      provider.ContentTypeJSON,
		ContentType: provider.ContentTypeJSON,
	})
}

// GenerateStream invokes the model with a response stream and yields one
// event per chunk. A decoding failure ends the sequence with an error
// wrapping provider.ErrMalformedChunk. The sequence is single-use.
func (g *Claude2) GenerateStream(ctx context.Context, queries, snippets []string, conversation []api.ConversationTurn) iter.Seq2[api.StreamEvent, error] {
	decode := decoderFor(g.format)
	var used atomic.Bool

	return func(yield func(api.StreamEvent, error) bool) {
		if used.Swap(true) {
			yield(api.StreamEvent{}, provider.ErrStreamConsumed)
			return
		}

		body, err := g.PrepareRequest(queries, snippets, conversation)
		if err != nil {
			yield(api.StreamEvent{}, err)
			return
		}

		debug.Log("generator", "generate stream",
			"generator", g.info.Name, "model", g.info.ModelName, "format", g.format)

		for chunk, err := range g.invoker.InvokeStream(ctx, g.info.ModelName, body) {
			if err != nil {
				yield(api.StreamEvent{}, err)
				return
			}

			ev, err := decode(chunk)
			if err != nil {
				yield(api.StreamEvent{}, err)
				return
			}

			if !yield(ev, nil) {
				return
			}
		}
	}
}
