package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/transport"
)

type generateOptions struct {
	queries      []string
	snippets     []string
	history      []string
	generator    string
	stream       bool
	showFinished bool
}

func newGenerateCmd(c *cli) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an answer for one or more queries",
		Long: `Generate an answer for the given queries, grounded on optional context
snippets and conversation history.

Conversation turns are given as TYPE:CONTENT, for example
--turn "human:Hi" --turn "ai:Hello, how can I help?".

Examples:
  bedrockgen generate -q "What is Go?"
  bedrockgen generate -q "Summarize" -c "$(cat notes.txt)" --stream`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.queries, "query", "q", nil, "query to answer (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.snippets, "context", "c", nil, "context snippet (repeatable)")
	cmd.Flags().StringArrayVar(&opts.history, "turn", nil, "conversation turn as TYPE:CONTENT (repeatable)")
	cmd.Flags().StringVarP(&opts.generator, "generator", "g", "", "generator name (default: configured generator)")
	cmd.Flags().BoolVarP(&opts.stream, "stream", "s", false, "print the answer as it is generated")
	cmd.Flags().BoolVar(&opts.showFinished, "show-finish-reason", false, "print the finish reason after a streamed answer")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func (c *cli) runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	conversation, err := parseTurns(opts.history)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng, err := c.buildEngine(ctx, cfg)
	if err != nil {
		return err
	}

	req := &api.GenerateRequest{
		Generator:    opts.generator,
		Queries:      opts.queries,
		Context:      opts.snippets,
		Conversation: conversation,
		Stream:       opts.stream,
	}

	w := &printWriter{out: cmd.OutOrStdout(), showFinished: opts.showFinished}
	if err := eng.Generate(ctx, req, w); err != nil {
		return describeError(err)
	}
	return w.finish()
}

// parseTurns converts TYPE:CONTENT flags into conversation turns.
func parseTurns(raw []string) ([]api.ConversationTurn, error) {
	turns := make([]api.ConversationTurn, 0, len(raw))
	for _, r := range raw {
		typ, content, ok := strings.Cut(r, ":")
		if !ok || typ == "" {
			return nil, fmt.Errorf("invalid turn %q: want TYPE:CONTENT", r)
		}
		turns = append(turns, api.ConversationTurn{Type: typ, Content: content})
	}
	return turns, nil
}

// describeError renders API errors the way the HTTP API would report them.
func describeError(err error) error {
	apiErr := transport.APIErrorFrom(err)
	if apiErr.Code != "" {
		return fmt.Errorf("%s (%s): %s", apiErr.Type, apiErr.Code, apiErr.Message)
	}
	return errors.New(apiErr.Error())
}

// printWriter is a transport.ResponseWriter printing to a terminal.
type printWriter struct {
	out          io.Writer
	showFinished bool

	streamed bool
	reason   string
}

var _ transport.ResponseWriter = (*printWriter)(nil)

func (p *printWriter) WriteEvent(_ context.Context, ev api.StreamEvent) error {
	p.streamed = true
	if ev.FinishReason != nil {
		p.reason = *ev.FinishReason
	}
	_, err := io.WriteString(p.out, ev.Message)
	return err
}

func (p *printWriter) WriteResponse(_ context.Context, resp *api.GenerateResponse) error {
	_, err := fmt.Fprintln(p.out, resp.Message)
	return err
}

func (p *printWriter) Flush() error { return nil }

func (p *printWriter) finish() error {
	if !p.streamed {
		return nil
	}
	if _, err := fmt.Fprintln(p.out); err != nil {
		return err
	}
	if p.showFinished && p.reason != "" {
		_, err := fmt.Fprintf(p.out, "[finish_reason: %s]\n", p.reason)
		return err
	}
	return nil
}
