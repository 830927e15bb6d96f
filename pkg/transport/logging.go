package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhuss/bedrockgen/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// request. The entry includes the request ID (from context), the generator,
// whether the request streamed, input sizes, duration, and the error if
// the request failed.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next GenerateHandler) GenerateHandler {
		return GenerateHandlerFunc(func(ctx context.Context, req *api.GenerateRequest, w ResponseWriter) error {
			start := time.Now()
			requestID := RequestIDFromContext(ctx)

			err := next.Generate(ctx, req, w)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("generator", req.Generator),
				slog.Bool("stream", req.Stream),
				slog.Int("queries", len(req.Queries)),
				slog.Int("context", len(req.Context)),
				slog.Int("turns", len(req.Conversation)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
			}

			return err
		})
	}
}
