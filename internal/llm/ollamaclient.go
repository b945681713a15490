package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OllamaClient is the default Client implementation, speaking an
// Ollama-compatible /api/chat HTTP+JSON protocol directly. Grounded on
// herald's internal/ai.AIProcessor.SecurityCheck/CurateArticle
// generate-and-parse shape, generalized from herald's concrete
// github.com/ollama/ollama/api streaming callback down to stdlib
// net/http + encoding/json: the core must not hard-depend on any one
// LLM provider's client library (spec §6.2 treats Client as opaque), so
// the wire protocol here is deliberately thin plumbing rather than a
// place to add a provider SDK.
type OllamaClient struct {
	baseURL string
	http    *http.Client
}

// NewOllamaClient builds an OllamaClient against baseURL (e.g.
// "http://localhost:11434").
func NewOllamaClient(baseURL string) *OllamaClient {
	return &OllamaClient{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{}}
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaChatMessage    `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error"`
}

// Chat sends req as a single-turn, non-streaming Ollama chat completion
// and returns the assistant's reply text.
func (c *OllamaClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]ollamaChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollamaChatMessage{Role: m.Role, Content: m.Content})
	}

	options := map[string]interface{}{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	payload, err := json.Marshal(ollamaChatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	})
	if err != nil {
		return "", &ClientError{Kind: ErrorInvalid, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &ClientError{Kind: ErrorInvalid, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", &ClientError{Kind: ErrorTimeout, Err: ctx.Err()}
		}
		return "", &ClientError{Kind: ErrorUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &ClientError{Kind: ErrorRateLimited, StatusCode: resp.StatusCode, Err: fmt.Errorf("ollama: rate limited")}
	}
	if resp.StatusCode >= 500 {
		return "", &ClientError{Kind: ErrorUnavailable, StatusCode: resp.StatusCode, Err: fmt.Errorf("ollama: server error %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", &ClientError{Kind: ErrorInvalid, StatusCode: resp.StatusCode, Err: fmt.Errorf("ollama: request error %d", resp.StatusCode)}
	}

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ClientError{Kind: ErrorUnavailable, Err: fmt.Errorf("ollama: decode response: %w", err)}
	}
	if parsed.Error != "" {
		return "", &ClientError{Kind: ErrorUnavailable, Err: fmt.Errorf("ollama: %s", parsed.Error)}
	}
	return parsed.Message.Content, nil
}
