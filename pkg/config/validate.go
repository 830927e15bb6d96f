package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rhuss/bedrockgen/pkg/generator"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	// bedrock: region and credentials, reported as *bedrock.ConfigError.
	if err := c.Bedrock.ClientConfig().Validate(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, c.Generator.validate()...)

	// auth.type must be a known value.
	switch c.Auth.Type {
	case "none":
	case "apikey":
		if len(c.Auth.APIKeys) == 0 {
			errs = append(errs, fmt.Errorf("auth.api_keys must not be empty when auth.type is \"apikey\""))
		}
		for i, k := range c.Auth.APIKeys {
			if k.Key == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d].key or key_file is required", i))
			}
			if k.Subject == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d].subject is required", i))
			}
		}
	case "jwt":
		if c.Auth.JWT.Secret == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}

	if c.Auth.RateLimit.Enabled && c.Auth.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("auth.rate_limit.requests_per_minute must be > 0 when rate limiting is enabled"))
	}

	if t := c.Observability.Tracing; t.Enabled {
		if t.Endpoint == "" {
			errs = append(errs, fmt.Errorf("observability.tracing.endpoint is required when tracing is enabled"))
		}
		if t.SampleRatio < 0 || t.SampleRatio > 1 {
			errs = append(errs, fmt.Errorf("observability.tracing.sample_ratio must be within [0, 1], got %v", t.SampleRatio))
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	switch strings.ToUpper(c.Logging.Level) {
	case "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

func (g GeneratorConfig) validate() []error {
	var errs []error

	if g.Name == "" {
		errs = append(errs, fmt.Errorf("generator.name is required"))
	}
	if g.Model == "" {
		errs = append(errs, fmt.Errorf("generator.model is required"))
	}
	if _, err := generator.ParseStreamFormat(g.StreamFormat); err != nil {
		errs = append(errs, fmt.Errorf("generator.stream_format: %w", err))
	}
	if g.ContextWindow < 0 {
		errs = append(errs, fmt.Errorf("generator.context_window must be >= 0, got %d", g.ContextWindow))
	}
	if g.MaxTokensToSample <= 0 {
		errs = append(errs, fmt.Errorf("generator.max_tokens_to_sample must be > 0, got %d", g.MaxTokensToSample))
	}
	if g.Temperature < 0 || g.Temperature > 1 {
		errs = append(errs, fmt.Errorf("generator.temperature must be within [0, 1], got %v", g.Temperature))
	}
	if g.TopP < 0 || g.TopP > 1 {
		errs = append(errs, fmt.Errorf("generator.top_p must be within [0, 1], got %v", g.TopP))
	}

	return errs
}
