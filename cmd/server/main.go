// Command server runs the bedrockgen HTTP API.
//
// Configuration is read from a YAML file (see --config, BEDROCKGEN_CONFIG,
// ./config.yaml, /etc/bedrockgen/config.yaml) with environment overrides:
//
//	BEDROCK_AWS_REGION      - AWS region (default: us-east-1)
//	BEDROCK_AWS_ACCESS_KEY  - AWS access key id
//	BEDROCK_AWS_SECRET_KEY  - AWS secret access key
//	BEDROCK_ENDPOINT        - Bedrock runtime endpoint override
//	BEDROCKGEN_MODEL        - Bedrock model id (default: anthropic.claude-v2)
//	BEDROCKGEN_PORT         - Listen port (default: 8080)
//	BEDROCKGEN_AUTH_TYPE    - none, apikey, or jwt (default: none)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rhuss/bedrockgen/pkg/config"
	"github.com/rhuss/bedrockgen/pkg/debug"
	"github.com/rhuss/bedrockgen/pkg/engine"
	"github.com/rhuss/bedrockgen/pkg/generator"
	"github.com/rhuss/bedrockgen/pkg/observability"
	"github.com/rhuss/bedrockgen/pkg/provider/bedrock"
	transporthttp "github.com/rhuss/bedrockgen/pkg/transport/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.TracingOptions(version))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing shutdown", "error", err)
		}
	}()

	client, err := bedrock.New(ctx, cfg.Bedrock.ClientConfig())
	if err != nil {
		return fmt.Errorf("creating bedrock client: %w", err)
	}

	gen := generator.NewClaude2(client, cfg.Generator.Options()...)

	reg := generator.NewRegistry()
	if err := reg.Register(generator.Instrument(gen)); err != nil {
		return err
	}

	eng, err := engine.New(reg, engine.Config{DefaultGenerator: gen.Info().Name})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
	}

	var httpMW []func(http.Handler) http.Handler
	if cfg.Observability.Tracing.Enabled {
		httpMW = append(httpMW, observability.TracingMiddleware)
	}
	if cfg.Observability.Metrics.Enabled {
		httpMW = append(httpMW, observability.MetricsMiddleware)
		opts = append(opts, transporthttp.WithMetricsPath(cfg.Observability.Metrics.Path))
	}

	authMW, err := cfg.Auth.Middleware()
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}
	if authMW != nil {
		httpMW = append(httpMW, authMW)
	}
	opts = append(opts, transporthttp.WithHTTPMiddleware(httpMW...))

	slog.Info("generator registered",
		"name", gen.Info().Name,
		"model", gen.Info().ModelName,
		"streamable", gen.Info().Streamable,
		"region", cfg.Bedrock.Region,
		"auth", cfg.Auth.Type,
	)

	return transporthttp.NewServer(eng, eng, opts...).ListenAndServe()
}
