// Command mock-bedrock runs a deterministic fake of the Bedrock runtime
// API for local development and end-to-end tests. Point bedrock.endpoint
// (or BEDROCK_ENDPOINT) at it; any credentials are accepted.
//
// See package bedrocktest for the answers and the error triggers.
//
// Configuration:
//
//	MOCK_PORT          - Listen port (default: 9090)
//	MOCK_STREAM_FORMAT - "chat" (default) or "completion" chunk bodies
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhuss/bedrockgen/pkg/provider/bedrock/bedrocktest"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: bedrocktest.NewHandler(bedrocktest.Options{StreamFormat: os.Getenv("MOCK_STREAM_FORMAT")}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock bedrock starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock bedrock failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock bedrock shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
