package generator

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/observability"
	"github.com/rhuss/bedrockgen/pkg/provider"
)

const tracerName = "github.com/rhuss/bedrockgen/pkg/generator"

// instrumented records metrics and a span per call around a Generator.
type instrumented struct {
	next Generator
}

// Instrument wraps g so that every call records Prometheus metrics and an
// OpenTelemetry span. Results and errors pass through untouched.
func Instrument(g Generator) Generator {
	return &instrumented{next: g}
}

func (i *instrumented) Info() Info { return i.next.Info() }

func (i *instrumented) Generate(ctx context.Context, queries, snippets []string, conversation []api.ConversationTurn) (string, error) {
	info := i.next.Info()
	ctx, span := i.start(ctx, "generator.Generate", info)
	defer span.End()

	start := time.Now()
	msg, err := i.next.Generate(ctx, queries, snippets, conversation)
	i.record(span, info, "blocking", start, err)
	return msg, err
}

func (i *instrumented) GenerateStream(ctx context.Context, queries, snippets []string, conversation []api.ConversationTurn) iter.Seq2[api.StreamEvent, error] {
	info := i.next.Info()
	var used atomic.Bool

	return func(yield func(api.StreamEvent, error) bool) {
		if used.Swap(true) {
			yield(api.StreamEvent{}, provider.ErrStreamConsumed)
			return
		}

		ctx, span := i.start(ctx, "generator.GenerateStream", info)
		defer span.End()

		start := time.Now()
		var (
			events  int
			callErr error
		)
		defer func() {
			span.SetAttributes(attribute.Int("generator.stream.events", events))
			i.record(span, info, "stream", start, callErr)
		}()

		for ev, err := range i.next.GenerateStream(ctx, queries, snippets, conversation) {
			if err != nil {
				callErr = err
				yield(ev, err)
				return
			}
			events++
			observability.StreamEventsTotal.WithLabelValues(info.Name, info.ModelName).Inc()
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func (i *instrumented) start(ctx context.Context, name string, info Info) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("generator.name", info.Name),
			attribute.String("generator.model", info.ModelName),
		),
	)
}

func (i *instrumented) record(span trace.Span, info Info, mode string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.GeneratorCallsTotal.WithLabelValues(info.Name, info.ModelName, mode, status).Inc()
	observability.GeneratorLatency.WithLabelValues(info.Name, info.ModelName, mode).Observe(time.Since(start).Seconds())
}
