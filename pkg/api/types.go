package api

import "encoding/json"

// ConversationTurn is one prior turn of the host application's conversation.
// Type is the speaker label rendered into the prompt (e.g. "User", "System").
type ConversationTurn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts "role" as an alias of "type".
func (t *ConversationTurn) UnmarshalJSON(data []byte) error {
	var w struct {
		Type    string `json:"type"`
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Type = w.Type
	if t.Type == "" {
		t.Type = w.Role
	}
	t.Content = w.Content
	return nil
}

// StreamEvent is one incremental piece of a streamed answer.
// FinishReason is nil until the model reports why it stopped.
type StreamEvent struct {
	Message      string  `json:"message"`
	FinishReason *string `json:"finish_reason"`
}

// Finished reports whether the event carries a finish reason.
func (e StreamEvent) Finished() bool {
	return e.FinishReason != nil
}

// GeneratorInfo describes a generator to the host application.
type GeneratorInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Streamable    bool   `json:"streamable"`
	ModelName     string `json:"model_name"`
	ContextWindow int    `json:"context_window"`
}

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	// Generator selects a registered generator by name. Empty selects the
	// configured default.
	Generator    string             `json:"generator,omitempty"`
	Queries      []string           `json:"queries"`
	Context      []string           `json:"context,omitempty"`
	Conversation []ConversationTurn `json:"conversation,omitempty"`
	Stream       bool               `json:"stream,omitempty"`
}

// GenerateResponse is the non-streaming reply to a GenerateRequest.
type GenerateResponse struct {
	Generator string `json:"generator"`
	Message   string `json:"message"`
}

// GeneratorList is the body of GET /v1/generators.
type GeneratorList struct {
	Object string          `json:"object"`
	Data   []GeneratorInfo `json:"data"`
}
