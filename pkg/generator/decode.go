package generator

import (
	"encoding/json"
	"fmt"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/provider"
)

// StreamFormat selects how streamed chunks are decoded.
type StreamFormat string

const (
	// StreamFormatChat decodes chat-completion chunks:
	// {"choices":[{"delta":{"content":"..."},"finish_reason":...}]}.
	StreamFormatChat StreamFormat = "chat"

	// StreamFormatCompletion decodes text-completion chunks:
	// {"completion":"...","stop_reason":...}.
	StreamFormatCompletion StreamFormat = "completion"
)

// ParseStreamFormat validates a configured format name. Empty means chat.
func ParseStreamFormat(s string) (StreamFormat, error) {
	switch StreamFormat(s) {
	case "", StreamFormatChat:
		return StreamFormatChat, nil
	case StreamFormatCompletion:
		return StreamFormatCompletion, nil
	default:
		return "", fmt.Errorf("unknown stream format %q (supported: chat, completion)", s)
	}
}

// decoder maps one chunk to one event.
type decoder func(provider.Chunk) (api.StreamEvent, error)

func decoderFor(f StreamFormat) decoder {
	if f == StreamFormatCompletion {
		return decodeCompletionChunk
	}
	return decodeChatChunk
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// decodeChatChunk reads choices[0]. A missing or null delta content becomes
// an empty message.
func decodeChatChunk(c provider.Chunk) (api.StreamEvent, error) {
	var chunk chatChunk
	if err := json.Unmarshal(c, &chunk); err != nil {
		return api.StreamEvent{}, fmt.Errorf("%w: %w", provider.ErrMalformedChunk, err)
	}
	if len(chunk.Choices) == 0 {
		return api.StreamEvent{}, fmt.Errorf("%w: no choices", provider.ErrMalformedChunk)
	}

	choice := chunk.Choices[0]
	ev := api.StreamEvent{FinishReason: choice.FinishReason}
	if choice.Delta.Content != nil {
		ev.Message = *choice.Delta.Content
	}
	return ev, nil
}

type completionChunk struct {
	Completion string  `json:"completion"`
	StopReason *string `json:"stop_reason"`
}

func decodeCompletionChunk(c provider.Chunk) (api.StreamEvent, error) {
	var chunk completionChunk
	if err := json.Unmarshal(c, &chunk); err != nil {
		return api.StreamEvent{}, fmt.Errorf("%w: %w", provider.ErrMalformedChunk, err)
	}
	return api.StreamEvent{Message: chunk.Completion, FinishReason: chunk.StopReason}, nil
}
