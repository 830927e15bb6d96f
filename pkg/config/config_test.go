package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/bedrockgen/pkg/generator"
	"github.com/rhuss/bedrockgen/pkg/provider/bedrock"
)

// minimalYAML carries the only fields without usable defaults.
const minimalYAML = `
bedrock:
  access_key: AKID
  secret_key: SECRET
`

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("default server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("default server.read_timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 120*time.Second {
		t.Errorf("default server.write_timeout = %v, want 120s", cfg.Server.WriteTimeout)
	}
	if cfg.Bedrock.Region != "us-east-1" {
		t.Errorf("default bedrock.region = %q, want \"us-east-1\"", cfg.Bedrock.Region)
	}
	if cfg.Generator.Name != "Claude2Generator" {
		t.Errorf("default generator.name = %q, want \"Claude2Generator\"", cfg.Generator.Name)
	}
	if cfg.Generator.Model != "anthropic.claude-v2" {
		t.Errorf("default generator.model = %q, want \"anthropic.claude-v2\"", cfg.Generator.Model)
	}
	if cfg.Generator.Streamable {
		t.Error("default generator.streamable = true, want false")
	}
	if cfg.Generator.ContextWindow != 10000 {
		t.Errorf("default generator.context_window = %d, want 10000", cfg.Generator.ContextWindow)
	}
	if cfg.Generator.MaxTokensToSample != 300 || cfg.Generator.Temperature != 0.1 || cfg.Generator.TopP != 0.9 {
		t.Errorf("default sampling = %d/%v/%v, want 300/0.1/0.9",
			cfg.Generator.MaxTokensToSample, cfg.Generator.Temperature, cfg.Generator.TopP)
	}
	if cfg.Auth.Type != "none" {
		t.Errorf("default auth.type = %q, want \"none\"", cfg.Auth.Type)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("default metrics = %+v, want enabled at /metrics", cfg.Observability.Metrics)
	}
	if cfg.Observability.Tracing.Enabled {
		t.Error("default tracing enabled, want disabled")
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
server:
  port: 9090
  read_timeout: 60s
  write_timeout: 180s
bedrock:
  region: eu-central-1
  access_key: AKID
  secret_key: SECRET
  session_token: TOKEN
  endpoint: http://localhost:4566
generator:
  name: claude-instant
  model: anthropic.claude-instant-v1
  streamable: true
  stream_format: completion
  max_tokens_to_sample: 500
  temperature: 0.5
auth:
  type: apikey
  api_keys:
    - key: sk-key-1
      subject: alice
      service_tier: premium
    - key: sk-key-2
      subject: bob
  rate_limit:
    enabled: true
    requests_per_minute: 120
    tiers:
      premium:
        requests_per_minute: 600
        burst: 50
observability:
  tracing:
    enabled: true
    endpoint: http://otel:4318
logging:
  level: DEBUG
  format: json
`

	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("server.read_timeout = %v, want 60s", cfg.Server.ReadTimeout)
	}

	if cfg.Bedrock.Region != "eu-central-1" {
		t.Errorf("bedrock.region = %q, want \"eu-central-1\"", cfg.Bedrock.Region)
	}
	if cfg.Bedrock.SessionToken != "TOKEN" {
		t.Errorf("bedrock.session_token = %q, want \"TOKEN\"", cfg.Bedrock.SessionToken)
	}
	if cfg.Bedrock.Endpoint != "http://localhost:4566" {
		t.Errorf("bedrock.endpoint = %q, want \"http://localhost:4566\"", cfg.Bedrock.Endpoint)
	}

	if cfg.Generator.Name != "claude-instant" {
		t.Errorf("generator.name = %q, want \"claude-instant\"", cfg.Generator.Name)
	}
	if !cfg.Generator.Streamable {
		t.Error("generator.streamable = false, want true")
	}
	if cfg.Generator.StreamFormat != "completion" {
		t.Errorf("generator.stream_format = %q, want \"completion\"", cfg.Generator.StreamFormat)
	}
	if cfg.Generator.MaxTokensToSample != 500 {
		t.Errorf("generator.max_tokens_to_sample = %d, want 500", cfg.Generator.MaxTokensToSample)
	}
	// Not set in YAML, so the default survives.
	if cfg.Generator.TopP != 0.9 {
		t.Errorf("generator.top_p = %v, want default 0.9", cfg.Generator.TopP)
	}

	if cfg.Auth.Type != "apikey" {
		t.Errorf("auth.type = %q, want \"apikey\"", cfg.Auth.Type)
	}
	if len(cfg.Auth.APIKeys) != 2 {
		t.Fatalf("auth.api_keys length = %d, want 2", len(cfg.Auth.APIKeys))
	}
	if cfg.Auth.APIKeys[0].ServiceTier != "premium" {
		t.Errorf("auth.api_keys[0].service_tier = %q, want \"premium\"", cfg.Auth.APIKeys[0].ServiceTier)
	}
	if cfg.Auth.RateLimit.Tiers["premium"].Burst != 50 {
		t.Errorf("auth.rate_limit.tiers.premium.burst = %d, want 50", cfg.Auth.RateLimit.Tiers["premium"].Burst)
	}

	if !cfg.Observability.Tracing.Enabled || cfg.Observability.Tracing.Endpoint != "http://otel:4318" {
		t.Errorf("observability.tracing = %+v, want enabled with otel endpoint", cfg.Observability.Tracing)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging.format = %q, want \"json\"", cfg.Logging.Format)
	}
}

func TestEnvOverride(t *testing.T) {
	yamlContent := `
bedrock:
  region: from-yaml
  access_key: yaml-key
  secret_key: yaml-secret
server:
  port: 9090
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	t.Setenv("BEDROCK_AWS_REGION", "us-west-2")
	t.Setenv("BEDROCK_AWS_ACCESS_KEY", "env-key")
	t.Setenv("BEDROCK_AWS_SECRET_KEY", "env-secret")
	t.Setenv("BEDROCK_AWS_SESSION_TOKEN", "env-token")
	t.Setenv("BEDROCK_ENDPOINT", "http://mock:9000")
	t.Setenv("BEDROCKGEN_PORT", "7070")
	t.Setenv("BEDROCKGEN_MODEL", "anthropic.claude-v2:1")
	t.Setenv("BEDROCKGEN_STREAMABLE", "true")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bedrock.Region != "us-west-2" {
		t.Errorf("bedrock.region = %q, want env override", cfg.Bedrock.Region)
	}
	if cfg.Bedrock.AccessKey != "env-key" || cfg.Bedrock.SecretKey != "env-secret" {
		t.Errorf("bedrock credentials = %q/%q, want env override", cfg.Bedrock.AccessKey, cfg.Bedrock.SecretKey)
	}
	if cfg.Bedrock.SessionToken != "env-token" {
		t.Errorf("bedrock.session_token = %q, want env override", cfg.Bedrock.SessionToken)
	}
	if cfg.Bedrock.Endpoint != "http://mock:9000" {
		t.Errorf("bedrock.endpoint = %q, want env override", cfg.Bedrock.Endpoint)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Generator.Model != "anthropic.claude-v2:1" {
		t.Errorf("generator.model = %q, want env override", cfg.Generator.Model)
	}
	if !cfg.Generator.Streamable {
		t.Error("generator.streamable = false, want env override true")
	}
}

func TestEnvOnly(t *testing.T) {
	t.Setenv("BEDROCKGEN_CONFIG", "")
	t.Setenv("BEDROCK_AWS_ACCESS_KEY", "env-key")
	t.Setenv("BEDROCK_AWS_SECRET_KEY", "env-secret")
	t.Setenv("BEDROCKGEN_AUTH_TYPE", "apikey")
	t.Setenv("BEDROCKGEN_API_KEYS", `[{"key":"sk-env","subject":"env-user","service_tier":"standard"}]`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bedrock.Region != "us-east-1" {
		t.Errorf("bedrock.region = %q, want default \"us-east-1\"", cfg.Bedrock.Region)
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Fatalf("auth.api_keys length = %d, want 1", len(cfg.Auth.APIKeys))
	}
	if cfg.Auth.APIKeys[0].Subject != "env-user" {
		t.Errorf("auth.api_keys[0].subject = %q, want \"env-user\"", cfg.Auth.APIKeys[0].Subject)
	}
}

func TestEnvOverrideInvalidValues(t *testing.T) {
	tmpFile := writeTemp(t, "config-*.yaml", minimalYAML)

	t.Setenv("BEDROCKGEN_PORT", "not-a-port")
	t.Setenv("BEDROCKGEN_STREAMABLE", "maybe")

	_, err := Load(tmpFile)
	if err == nil {
		t.Fatal("Load() expected error for invalid env values")
	}
	for _, want := range []string{"BEDROCKGEN_PORT", "BEDROCKGEN_STREAMABLE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}

func TestFileReference(t *testing.T) {
	accessFile := writeTemp(t, "access-*.txt", "  AKID-FROM-FILE  \n")
	secretFile := writeTemp(t, "secret-*.txt", "secret-from-file\n")

	yamlContent := `
bedrock:
  access_key_file: ` + accessFile + `
  secret_key_file: ` + secretFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bedrock.AccessKey != "AKID-FROM-FILE" {
		t.Errorf("bedrock.access_key = %q, want \"AKID-FROM-FILE\" (from file, trimmed)", cfg.Bedrock.AccessKey)
	}
	if cfg.Bedrock.SecretKey != "secret-from-file" {
		t.Errorf("bedrock.secret_key = %q, want \"secret-from-file\"", cfg.Bedrock.SecretKey)
	}
}

func TestFileReferenceFromEnv(t *testing.T) {
	tokenFile := writeTemp(t, "token-*.txt", "session-token\n")
	tmpFile := writeTemp(t, "config-*.yaml", minimalYAML)

	t.Setenv("BEDROCK_AWS_SESSION_TOKEN_FILE", tokenFile)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bedrock.SessionToken != "session-token" {
		t.Errorf("bedrock.session_token = %q, want \"session-token\"", cfg.Bedrock.SessionToken)
	}
}

func TestFileReferenceForAuthSecrets(t *testing.T) {
	keyFile := writeTemp(t, "apikey-*.txt", "  sk-key-from-file  \n")
	jwtFile := writeTemp(t, "jwt-*.txt", "hmac-secret\n")

	yamlContent := minimalYAML + `
auth:
  type: apikey
  api_keys:
    - key_file: ` + keyFile + `
      subject: file-user
  jwt:
    secret_file: ` + jwtFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Auth.APIKeys[0].Key != "sk-key-from-file" {
		t.Errorf("auth.api_keys[0].key = %q, want \"sk-key-from-file\"", cfg.Auth.APIKeys[0].Key)
	}
	if cfg.Auth.JWT.Secret != "hmac-secret" {
		t.Errorf("auth.jwt.secret = %q, want \"hmac-secret\"", cfg.Auth.JWT.Secret)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	yamlContent := `
bedrock:
  access_key: AKID
  secret_key_file: /nonexistent/secret
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	_, err := Load(tmpFile)
	if err == nil {
		t.Fatal("Load() expected error for missing secret file")
	}
	if !strings.Contains(err.Error(), "bedrock.secret_key_file") {
		t.Errorf("error %q does not name the field", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", err)
	}
}

func TestFileReferenceDoesNotOverrideExplicitValue(t *testing.T) {
	secretFile := writeTemp(t, "secret-*.txt", "from-file")

	yamlContent := `
bedrock:
  access_key: AKID
  secret_key: explicit
  secret_key_file: ` + secretFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// When both secret_key and secret_key_file are set, the explicit value takes precedence.
	if cfg.Bedrock.SecretKey != "explicit" {
		t.Errorf("bedrock.secret_key = %q, want \"explicit\" (explicit value should win over file)", cfg.Bedrock.SecretKey)
	}
}

func TestFileDiscovery(t *testing.T) {
	envFile := writeTemp(t, "envconfig-*.yaml", `
bedrock:
  region: ap-southeast-2
  access_key: AKID
  secret_key: SECRET
`)
	t.Setenv("BEDROCKGEN_CONFIG", envFile)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(BEDROCKGEN_CONFIG) error: %v", err)
	}
	if cfg.Bedrock.Region != "ap-southeast-2" {
		t.Errorf("BEDROCKGEN_CONFIG: region = %q, want env config value", cfg.Bedrock.Region)
	}

	// Explicit path beats BEDROCKGEN_CONFIG.
	explicit := writeTemp(t, "config-*.yaml", minimalYAML+"  region: ca-central-1\n")
	cfg, err = Load(explicit)
	if err != nil {
		t.Fatalf("Load(explicit) error: %v", err)
	}
	if cfg.Bedrock.Region != "ca-central-1" {
		t.Errorf("explicit path: region = %q, want explicit value", cfg.Bedrock.Region)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("BEDROCKGEN_CONFIG", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() expected error without credentials")
	}
	if !errors.Is(err, bedrock.ErrMissingCredentials) {
		t.Errorf("error %v does not wrap bedrock.ErrMissingCredentials", err)
	}
	var cfgErr *bedrock.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error %v is not a *bedrock.ConfigError", err)
	}

	// LoadUnvalidated still succeeds.
	cfg, err := LoadUnvalidated("")
	if err != nil {
		t.Fatalf("LoadUnvalidated() error: %v", err)
	}
	if cfg.Bedrock.Region != "us-east-1" {
		t.Errorf("bedrock.region = %q, want default", cfg.Bedrock.Region)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "missing region",
			modify:  func(c *Config) { c.Bedrock.Region = "" },
			wantErr: "region",
		},
		{
			name:    "missing secret key",
			modify:  func(c *Config) { c.Bedrock.SecretKey = "" },
			wantErr: "secret_access_key",
		},
		{
			name: "default credential chain needs no keys",
			modify: func(c *Config) {
				c.Bedrock.AccessKey = ""
				c.Bedrock.SecretKey = ""
				c.Bedrock.UseDefaultCredentials = true
			},
		},
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port must be > 0",
		},
		{
			name:    "zero max body size",
			modify:  func(c *Config) { c.Server.MaxBodySize = 0 },
			wantErr: "server.max_body_size must be > 0",
		},
		{
			name:    "negative max body size",
			modify:  func(c *Config) { c.Server.MaxBodySize = -1 },
			wantErr: "server.max_body_size must be > 0",
		},
		{
			name:    "empty generator name",
			modify:  func(c *Config) { c.Generator.Name = "" },
			wantErr: "generator.name is required",
		},
		{
			name:    "empty model",
			modify:  func(c *Config) { c.Generator.Model = "" },
			wantErr: "generator.model is required",
		},
		{
			name:    "unknown stream format",
			modify:  func(c *Config) { c.Generator.StreamFormat = "sse" },
			wantErr: "generator.stream_format",
		},
		{
			name:    "temperature out of range",
			modify:  func(c *Config) { c.Generator.Temperature = 1.5 },
			wantErr: "generator.temperature",
		},
		{
			name:    "zero max tokens",
			modify:  func(c *Config) { c.Generator.MaxTokensToSample = 0 },
			wantErr: "generator.max_tokens_to_sample",
		},
		{
			name:    "invalid auth type",
			modify:  func(c *Config) { c.Auth.Type = "oauth2" },
			wantErr: "auth.type must be",
		},
		{
			name:    "apikey without keys",
			modify:  func(c *Config) { c.Auth.Type = "apikey" },
			wantErr: "auth.api_keys must not be empty",
		},
		{
			name: "apikey without subject",
			modify: func(c *Config) {
				c.Auth.Type = "apikey"
				c.Auth.APIKeys = []APIKeyConfig{{Key: "sk-1"}}
			},
			wantErr: "auth.api_keys[0].subject is required",
		},
		{
			name:    "jwt without secret",
			modify:  func(c *Config) { c.Auth.Type = "jwt" },
			wantErr: "auth.jwt.secret",
		},
		{
			name: "rate limit without rpm",
			modify: func(c *Config) {
				c.Auth.RateLimit.Enabled = true
				c.Auth.RateLimit.RequestsPerMinute = 0
			},
			wantErr: "auth.rate_limit.requests_per_minute",
		},
		{
			name: "tracing without endpoint",
			modify: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.Endpoint = ""
			},
			wantErr: "observability.tracing.endpoint",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "LOUD" },
			wantErr: "logging.level",
		},
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Bedrock.AccessKey = "AKID"
			cfg.Bedrock.SecretKey = "SECRET"
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestGeneratorOptions(t *testing.T) {
	gc := Defaults().Generator
	gc.Name = "custom"
	gc.Streamable = true
	gc.StreamFormat = "completion"

	g := generator.NewClaude2(nil, gc.Options()...)
	info := g.Info()

	if info.Name != "custom" {
		t.Errorf("name = %q, want \"custom\"", info.Name)
	}
	if !info.Streamable {
		t.Error("streamable = false, want true")
	}
	if info.ModelName != "anthropic.claude-v2" {
		t.Errorf("model = %q, want default", info.ModelName)
	}

	// Default options must reproduce the default request body.
	want, err := generator.PrepareRequest([]string{"q"}, []string{"c"}, nil)
	if err != nil {
		t.Fatalf("PrepareRequest() error: %v", err)
	}
	got, err := generator.NewClaude2(nil, Defaults().Generator.Options()...).PrepareRequest([]string{"q"}, []string{"c"}, nil)
	if err != nil {
		t.Fatalf("PrepareRequest() error: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("body = %s, want %s", got, want)
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		t.Fatalf("writing temp file: %v", err)
	}
	f.Close()

	return f.Name()
}
