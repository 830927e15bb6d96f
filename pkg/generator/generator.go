package generator

import (
	"context"
	"errors"
	"iter"

	"github.com/rhuss/bedrockgen/pkg/api"
)

// Info describes a generator to the host application.
type Info = api.GeneratorInfo

// Generator produces answers from queries, context and conversation.
// Implementations must be safe for concurrent use.
type Generator interface {
	Info() Info

	// Generate returns the complete answer. Errors from the underlying
	// invoker are returned unchanged.
	Generate(ctx context.Context, queries, snippets []string, conversation []api.ConversationTurn) (string, error)

	// GenerateStream returns a lazy, single-use sequence of events in
	// arrival order. No request is sent before the first pull.
	GenerateStream(ctx context.Context, queries, snippets []string, conversation []api.ConversationTurn) iter.Seq2[api.StreamEvent, error]
}

var (
	ErrUnknownGenerator   = errors.New("generator: unknown generator")
	ErrDuplicateGenerator = errors.New("generator: duplicate generator name")
)
