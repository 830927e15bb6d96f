package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhuss/bedrockgen/pkg/config"
	"github.com/rhuss/bedrockgen/pkg/debug"
	"github.com/rhuss/bedrockgen/pkg/engine"
	"github.com/rhuss/bedrockgen/pkg/generator"
	"github.com/rhuss/bedrockgen/pkg/provider"
	"github.com/rhuss/bedrockgen/pkg/provider/bedrock"
)

// cli holds state shared by all subcommands.
type cli struct {
	cfgFile string
	verbose bool

	// newInvoker builds the Bedrock transport. Tests replace it.
	newInvoker func(ctx context.Context, cfg bedrock.Config) (provider.Invoker, error)
}

func newCLI() *cli {
	return &cli{
		newInvoker: func(ctx context.Context, cfg bedrock.Config) (provider.Invoker, error) {
			return bedrock.New(ctx, cfg)
		},
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "bedrockgen",
		Short: "Generate answers with Bedrock-hosted models",
		Long: `bedrockgen sends queries, context snippets and conversation history to a
model hosted on AWS Bedrock and prints the answer.

Example usage:
  bedrockgen generate -q "What is Go?" -c "Go is a language."   # Blocking answer
  bedrockgen generate -q "What is Go?" --stream                 # Streamed answer
  bedrockgen generators                                         # List generators
  bedrockgen config validate                                    # Check configuration`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: $BEDROCKGEN_CONFIG or ./config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newGenerateCmd(c),
		newGeneratorsCmd(c),
		newConfigCmd(c),
	)
	return root
}

// loadConfig loads the configuration and sets up logging. With validate
// unset, missing credentials do not fail the command.
func (c *cli) loadConfig(validate bool) (*config.Config, error) {
	load := config.LoadUnvalidated
	if validate {
		load = config.Load
	}

	cfg, err := load(c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if c.verbose {
		level = "DEBUG"
	}
	debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      level,
		Format:     cfg.Logging.Format,
	})

	return cfg, nil
}

// buildEngine wires the configured generator behind an engine.
func (c *cli) buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	inv, err := c.newInvoker(ctx, cfg.Bedrock.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("creating bedrock client: %w", err)
	}

	reg := generator.NewRegistry()
	if err := reg.Register(generator.NewClaude2(inv, cfg.Generator.Options()...)); err != nil {
		return nil, err
	}

	return engine.New(reg, engine.Config{DefaultGenerator: cfg.Generator.Name})
}
