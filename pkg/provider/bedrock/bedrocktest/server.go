// Package bedrocktest provides a deterministic fake of the Bedrock runtime
// API, speaking the same REST-JSON and event stream wire formats as the
// real service.
//
// Answers are derived from the query found in the prompt. Queries that
// contain one of the trigger words exercise error paths:
//
//	invalid      - ValidationException (400) before any output
//	denied       - AccessDeniedException (403) before any output
//	stream-error - one chunk, then a modelStreamErrorException event
package bedrocktest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
)

// Options configures the fake runtime.
type Options struct {
	// StreamFormat is "chat" (default) or "completion" and selects the
	// body of streamed chunks.
	StreamFormat string
}

// NewHandler returns an http.Handler serving the fake runtime.
func NewHandler(opts Options) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /model/{model}/invoke", handleInvoke)
	mux.HandleFunc("POST /model/{model}/invoke-with-response-stream", func(w http.ResponseWriter, r *http.Request) {
		handleInvokeStream(w, r, opts)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// --- Request types ---

type invokeRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
}

// --- Response types ---

type invokeResponse struct {
	Completion string `json:"completion"`
	StopReason string `json:"stop_reason"`
}

type chatChunk struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Delta        chatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

type chatDelta struct {
	Content string `json:"content"`
}

type completionChunk struct {
	Completion string  `json:"completion"`
	StopReason *string `json:"stop_reason"`
}

// payloadPart is the JSON body of a "chunk" event.
type payloadPart struct {
	Bytes []byte `json:"bytes"`
}

// --- Handlers ---

func handleInvoke(w http.ResponseWriter, r *http.Request) {
	query, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	if writeTriggeredError(w, query) {
		return
	}

	slog.Info("invoke", "model", r.PathValue("model"), "query", query)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invokeResponse{
		Completion: answerFor(query),
		StopReason: "stop_sequence",
	})
}

func handleInvokeStream(w http.ResponseWriter, r *http.Request, opts Options) {
	query, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	if writeTriggeredError(w, query) {
		return
	}

	slog.Info("invoke stream", "model", r.PathValue("model"), "query", query)

	w.Header().Set("Content-Type", "application/vnd.amazon.eventstream")
	w.Header().Set("X-Amzn-Bedrock-Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	enc := eventstream.NewEncoder()

	pieces := splitAnswer(answerFor(query))
	if strings.Contains(query, "stream-error") {
		pieces = pieces[:1]
	}

	for i, piece := range pieces {
		var reason *string
		if i == len(pieces)-1 && !strings.Contains(query, "stream-error") {
			stop := "stop"
			reason = &stop
		}

		body, _ := json.Marshal(chunkBody(opts.StreamFormat, piece, reason))
		if err := writeChunk(enc, w, body); err != nil {
			slog.Debug("client went away", "error", err)
			return
		}
		rc.Flush()
	}

	if strings.Contains(query, "stream-error") {
		writeException(enc, w, "modelStreamErrorException", "mock stream failure")
		rc.Flush()
	}
}

// --- Helpers ---

var queryPattern = regexp.MustCompile(`Answer this query: '(.*?)' given`)

func decodeQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, http.StatusBadRequest, "ValidationException", "malformed request body: "+err.Error())
		return "", false
	}

	m := queryPattern.FindStringSubmatch(req.Prompt)
	if m == nil {
		return strings.TrimSpace(req.Prompt), true
	}
	return m[1], true
}

func writeTriggeredError(w http.ResponseWriter, query string) bool {
	switch {
	case strings.Contains(query, "invalid"):
		writeServiceError(w, http.StatusBadRequest, "ValidationException", "mock validation failure")
	case strings.Contains(query, "denied"):
		writeServiceError(w, http.StatusForbidden, "AccessDeniedException", "mock access denied")
	default:
		return false
	}
	return true
}

// writeServiceError writes a REST-JSON error the way the AWS SDK expects it.
func writeServiceError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Amzn-Errortype", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// NewServer starts a fake runtime on a local port. The caller must Close it.
func NewServer(opts Options) *httptest.Server {
	return httptest.NewServer(NewHandler(opts))
}

// AnswerFor returns the complete answer the fake runtime gives for query.
func AnswerFor(query string) string {
	return answerFor(query)
}

func answerFor(query string) string {
	if query == "" {
		return "I have no question to answer."
	}
	return "This is a mock answer to: " + query
}

// splitAnswer cuts the answer into word-sized pieces that concatenate
// back to the full text.
func splitAnswer(answer string) []string {
	words := strings.SplitAfter(answer, " ")
	pieces := words[:0]
	for _, w := range words {
		if w != "" {
			pieces = append(pieces, w)
		}
	}
	return pieces
}

func chunkBody(format, text string, reason *string) any {
	if format == "completion" {
		return completionChunk{Completion: text, StopReason: reason}
	}
	return chatChunk{Choices: []chatChoice{{Delta: chatDelta{Content: text}, FinishReason: reason}}}
}

func writeChunk(enc *eventstream.Encoder, w http.ResponseWriter, body []byte) error {
	payload, err := json.Marshal(payloadPart{Bytes: body})
	if err != nil {
		return err
	}

	var msg eventstream.Message
	msg.Headers.Set(":message-type", eventstream.StringValue("event"))
	msg.Headers.Set(":event-type", eventstream.StringValue("chunk"))
	msg.Headers.Set(":content-type", eventstream.StringValue("application/json"))
	msg.Payload = payload

	return enc.Encode(w, msg)
}

func writeException(enc *eventstream.Encoder, w http.ResponseWriter, exceptionType, message string) error {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return err
	}

	var msg eventstream.Message
	msg.Headers.Set(":message-type", eventstream.StringValue("exception"))
	msg.Headers.Set(":exception-type", eventstream.StringValue(exceptionType))
	msg.Headers.Set(":content-type", eventstream.StringValue("application/json"))
	msg.Payload = payload

	return enc.Encode(w, msg)
}
