// Package config provides unified configuration for the bedrockgen server
// and CLI.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (BEDROCK_* and BEDROCKGEN_* names)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/rhuss/bedrockgen/pkg/provider/bedrock"
)

// Config holds all configuration for bedrockgen.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Bedrock       BedrockConfig       `yaml:"bedrock"`
	Generator     GeneratorConfig     `yaml:"generator"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 10 MB
}

// BedrockConfig holds the Bedrock runtime connection settings.
type BedrockConfig struct {
	Region                string `yaml:"region"` // default: "us-east-1"
	AccessKey             string `yaml:"access_key"`
	AccessKeyFile         string `yaml:"access_key_file"` // _file variant for access_key
	SecretKey             string `yaml:"secret_key"`
	SecretKeyFile         string `yaml:"secret_key_file"` // _file variant for secret_key
	SessionToken          string `yaml:"session_token"`
	SessionTokenFile      string `yaml:"session_token_file"` // _file variant for session_token
	Endpoint              string `yaml:"endpoint"`           // optional endpoint override
	UseDefaultCredentials bool   `yaml:"use_default_credentials"`
}

// ClientConfig converts the section into the Bedrock client configuration.
func (b BedrockConfig) ClientConfig() bedrock.Config {
	return bedrock.Config{
		Region:                b.Region,
		AccessKeyID:           b.AccessKey,
		SecretAccessKey:       b.SecretKey,
		SessionToken:          b.SessionToken,
		Endpoint:              b.Endpoint,
		UseDefaultCredentials: b.UseDefaultCredentials,
	}
}

// GeneratorConfig configures the Claude2 generator.
type GeneratorConfig struct {
	Name              string  `yaml:"name"`                 // default: "Claude2Generator"
	Model             string  `yaml:"model"`                // default: "anthropic.claude-v2"
	Description       string  `yaml:"description"`          // default: "Generator using Bedrock model"
	Streamable        bool    `yaml:"streamable"`           // default: false
	ContextWindow     int     `yaml:"context_window"`       // default: 10000
	StreamFormat      string  `yaml:"stream_format"`        // "chat" or "completion", default: "chat"
	SystemPrompt      string  `yaml:"system_prompt"`        // optional override
	MaxTokensToSample int     `yaml:"max_tokens_to_sample"` // default: 300
	Temperature       float64 `yaml:"temperature"`          // default: 0.1
	TopP              float64 `yaml:"top_p"`                // default: 0.9
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type      string          `yaml:"type"`     // "none", "apikey", "jwt", default: "none"
	APIKeys   []APIKeyConfig  `yaml:"api_keys"` // API key entries for type=apikey
	JWT       JWTConfig       `yaml:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key         string `yaml:"key" json:"key"`
	KeyFile     string `yaml:"key_file" json:"key_file"` // _file variant for key
	Subject     string `yaml:"subject" json:"subject"`
	ServiceTier string   `yaml:"service_tier" json:"service_tier"` // default: "default"
	Scopes      []string `yaml:"scopes" json:"scopes"`
}

// JWTConfig holds settings for HMAC-signed bearer tokens.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
	UserClaim  string `yaml:"user_claim"` // default: "sub"
	TierClaim  string `yaml:"tier_claim"` // default: "tier"
}

// RateLimitConfig holds per-subject token bucket settings.
type RateLimitConfig struct {
	Enabled           bool                  `yaml:"enabled"`
	RequestsPerMinute int                   `yaml:"requests_per_minute"` // default: 60
	Burst             int                   `yaml:"burst"`               // 0 means same as requests_per_minute
	Tiers             map[string]TierConfig `yaml:"tiers"`
}

// TierConfig overrides the rate limit for one service tier.
type TierConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`      // default: false
	Endpoint    string  `yaml:"endpoint"`     // default: "http://localhost:4318"
	ServiceName string  `yaml:"service_name"` // default: "bedrockgen"
	Insecure    bool    `yaml:"insecure"`     // default: true
	SampleRatio float64 `yaml:"sample_ratio"` // default: 1.0
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // TRACE, DEBUG, INFO, WARN, ERROR; default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     10 << 20,
		},
		Bedrock: BedrockConfig{
			Region: bedrock.DefaultRegion,
		},
		Generator: GeneratorConfig{
			Name:              "Claude2Generator",
			Model:             "anthropic.claude-v2",
			Description:       "Generator using Bedrock model",
			Streamable:        false,
			ContextWindow:     10000,
			StreamFormat:      "chat",
			MaxTokensToSample: 300,
			Temperature:       0.1,
			TopP:              0.9,
		},
		Auth: AuthConfig{
			Type: "none",
			JWT: JWTConfig{
				UserClaim: "sub",
				TierClaim: "tier",
			},
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Tracing: TracingConfig{
				Endpoint:    "http://localhost:4318",
				ServiceName: "bedrockgen",
				Insecure:    true,
				SampleRatio: 1.0,
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

const redacted = "REDACTED"

// Redact replaces secret values with a placeholder, for printing.
func (c *Config) Redact() {
	redact := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}
	redact(&c.Bedrock.AccessKey)
	redact(&c.Bedrock.SecretKey)
	redact(&c.Bedrock.SessionToken)
	redact(&c.Auth.JWT.Secret)
	for i := range c.Auth.APIKeys {
		redact(&c.Auth.APIKeys[i].Key)
	}
}
