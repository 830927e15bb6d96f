package generator

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rhuss/bedrockgen/pkg/api"
)

// DefaultSystemPrompt opens every prompt.
const DefaultSystemPrompt = "You are a Retrieval Augmented Generation chatbot. " +
	"Please answer user queries only with the provided context. " +
	"If the provided documentation does not provide enough information, say so."

// Params are the sampling parameters sent with every request.
type Params struct {
	MaxTokensToSample int     `json:"max_tokens_to_sample" yaml:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	TopP              float64 `json:"top_p" yaml:"top_p"`
}

// DefaultParams returns the sampling parameters used by Claude2.
func DefaultParams() Params {
	return Params{
		MaxTokensToSample: 300,
		Temperature:       0.1,
		TopP:              0.9,
	}
}

// requestBody fixes the key order of the serialized request.
type requestBody struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
}

// BuildPrompt assembles the prompt text: the system prompt, one
// "\n\n<type>: <content>" block per turn, then the user query with its
// context and the trailing assistant marker.
func BuildPrompt(system string, queries, snippets []string, conversation []api.ConversationTurn) string {
	var b strings.Builder
	b.WriteString(system)

	for _, turn := range conversation {
		b.WriteString("\n\n")
		b.WriteString(turn.Type)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}

	b.WriteString("\n\nUser: Answer this query: '")
	b.WriteString(strings.Join(queries, " "))
	b.WriteString("' given the following context: ")
	b.WriteString(strings.Join(snippets, " "))
	b.WriteString("\n\nAssistant:")

	return b.String()
}

// PrepareRequest serializes the request body for the default system prompt
// and sampling parameters. The output depends only on its arguments.
func PrepareRequest(queries, snippets []string, conversation []api.ConversationTurn) ([]byte, error) {
	return prepareRequest(DefaultSystemPrompt, DefaultParams(), queries, snippets, conversation)
}

func prepareRequest(system string, p Params, queries, snippets []string, conversation []api.ConversationTurn) ([]byte, error) {
	body := requestBody{
		// The prompt travels wrapped in literal double quotes.
		Prompt:            `"` + BuildPrompt(system, queries, snippets, conversation) + `"`,
		MaxTokensToSample: p.MaxTokensToSample,
		Temperature:       p.Temperature,
		TopP:              p.TopP,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
