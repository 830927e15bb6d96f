package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, BEDROCKGEN_CONFIG env, ./config.yaml, /etc/bedrockgen/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg, err := LoadUnvalidated(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated runs every loading step except validation. Commands that
// do not talk to Bedrock use it so that missing credentials are not fatal.
func LoadUnvalidated(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. BEDROCKGEN_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/bedrockgen/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("BEDROCKGEN_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/bedrockgen/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) error {
	setString(&cfg.Bedrock.Region, "BEDROCK_AWS_REGION")
	setString(&cfg.Bedrock.AccessKey, "BEDROCK_AWS_ACCESS_KEY")
	setString(&cfg.Bedrock.AccessKeyFile, "BEDROCK_AWS_ACCESS_KEY_FILE")
	setString(&cfg.Bedrock.SecretKey, "BEDROCK_AWS_SECRET_KEY")
	setString(&cfg.Bedrock.SecretKeyFile, "BEDROCK_AWS_SECRET_KEY_FILE")
	setString(&cfg.Bedrock.SessionToken, "BEDROCK_AWS_SESSION_TOKEN")
	setString(&cfg.Bedrock.SessionTokenFile, "BEDROCK_AWS_SESSION_TOKEN_FILE")
	setString(&cfg.Bedrock.Endpoint, "BEDROCK_ENDPOINT")

	setString(&cfg.Generator.Model, "BEDROCKGEN_MODEL")
	setString(&cfg.Generator.StreamFormat, "BEDROCKGEN_STREAM_FORMAT")
	setString(&cfg.Auth.Type, "BEDROCKGEN_AUTH_TYPE")
	setString(&cfg.Auth.JWT.Secret, "BEDROCKGEN_JWT_SECRET")
	setString(&cfg.Logging.Level, "BEDROCKGEN_LOG_LEVEL")
	setString(&cfg.Logging.Format, "BEDROCKGEN_LOG_FORMAT")
	setString(&cfg.Logging.Debug, "BEDROCKGEN_DEBUG")
	setString(&cfg.Observability.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	var errs []error
	if v := os.Getenv("BEDROCKGEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("BEDROCKGEN_PORT: %w", err))
		} else {
			cfg.Server.Port = port
		}
	}
	if err := setBool(&cfg.Generator.Streamable, "BEDROCKGEN_STREAMABLE"); err != nil {
		errs = append(errs, err)
	}
	if err := setBool(&cfg.Bedrock.UseDefaultCredentials, "BEDROCK_USE_DEFAULT_CREDENTIALS"); err != nil {
		errs = append(errs, err)
	}
	if err := setBool(&cfg.Observability.Tracing.Enabled, "BEDROCKGEN_TRACING_ENABLED"); err != nil {
		errs = append(errs, err)
	}

	// BEDROCKGEN_API_KEYS: JSON array of API key configs.
	if v := os.Getenv("BEDROCKGEN_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err != nil {
			errs = append(errs, err)
		} else if len(keys) > 0 {
			cfg.Auth.APIKeys = keys
		}
	}

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKeyConfig, error) {
	var keys []APIKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name string
		file string
		dst  *string
	}{
		{"bedrock.access_key_file", cfg.Bedrock.AccessKeyFile, &cfg.Bedrock.AccessKey},
		{"bedrock.secret_key_file", cfg.Bedrock.SecretKeyFile, &cfg.Bedrock.SecretKey},
		{"bedrock.session_token_file", cfg.Bedrock.SessionTokenFile, &cfg.Bedrock.SessionToken},
		{"auth.jwt.secret_file", cfg.Auth.JWT.SecretFile, &cfg.Auth.JWT.Secret},
	}
	for _, ref := range refs {
		if ref.file == "" || *ref.dst != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.dst = val
	}

	// auth.api_keys[*].key_file -> auth.api_keys[*].key
	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
