package engine

import "github.com/rhuss/bedrockgen/pkg/api"

// Config holds configuration for the engine.
type Config struct {
	// DefaultGenerator is used when the request omits the generator field.
	// When empty and exactly one generator is registered, that one is used.
	DefaultGenerator string

	// Validation bounds the size of incoming requests. The zero value
	// means use api.DefaultValidationConfig.
	Validation api.ValidationConfig
}

func (c Config) validation() api.ValidationConfig {
	if c.Validation == (api.ValidationConfig{}) {
		return api.DefaultValidationConfig()
	}
	return c.Validation
}
