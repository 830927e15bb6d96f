package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxQueries      int
	MaxContextItems int
	MaxTurns        int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxQueries:      32,
		MaxContextItems: 256,
		MaxTurns:        200,
	}
}

// ValidateRequest checks a GenerateRequest at the HTTP boundary. It returns an
// *APIError describing the first validation failure, or nil if the request is
// valid. Prompt size is not checked here; truncation is left to the endpoint.
func ValidateRequest(req *GenerateRequest, cfg ValidationConfig) *APIError {
	if len(req.Queries) == 0 {
		return NewInvalidRequestError("queries", "queries must contain at least one entry")
	}

	if cfg.MaxQueries > 0 && len(req.Queries) > cfg.MaxQueries {
		return NewInvalidRequestError("queries",
			fmt.Sprintf("queries exceeds maximum of %d entries", cfg.MaxQueries))
	}

	if cfg.MaxContextItems > 0 && len(req.Context) > cfg.MaxContextItems {
		return NewInvalidRequestError("context",
			fmt.Sprintf("context exceeds maximum of %d snippets", cfg.MaxContextItems))
	}

	if cfg.MaxTurns > 0 && len(req.Conversation) > cfg.MaxTurns {
		return NewInvalidRequestError("conversation",
			fmt.Sprintf("conversation exceeds maximum of %d turns", cfg.MaxTurns))
	}

	for i, turn := range req.Conversation {
		if turn.Type == "" {
			return NewInvalidRequestError(fmt.Sprintf("conversation[%d].type", i), "turn type is required")
		}
	}

	return nil
}
