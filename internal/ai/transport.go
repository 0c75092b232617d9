package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

const anthropicVersion = "2023-06-01"

// Prompt is one classifier call.
type Prompt struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer sends a prompt to a language model and returns the raw text of
// its answer.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// chatCompleter speaks the OpenAI chat completions protocol, which DeepSeek
// and most proxies share.
type chatCompleter struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *chatCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	reqBody := chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    p.Temperature,
		MaxTokens:      p.MaxTokens,
	}

	body, err := postJSON(ctx, c.httpClient, c.endpoint, reqBody, p.Model, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", apperr.ErrSchema, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: response has no message content", apperr.ErrSchema)
	}
	return resp.Choices[0].Message.Content, nil
}

// anthropicCompleter speaks the Anthropic Messages API.
type anthropicCompleter struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *anthropicCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	reqBody := anthropicRequest{
		Model:       p.Model,
		System:      p.System,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: p.User},
		},
	}

	body, err := postJSON(ctx, c.httpClient, c.endpoint, reqBody, p.Model, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	})
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", apperr.ErrSchema, err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Type != "text" {
		return "", fmt.Errorf("%w: response has no text content", apperr.ErrSchema)
	}
	return resp.Content[0].Text, nil
}

// postJSON sends reqBody and returns the body of a 2xx response. Failures are
// classified as transport, upstream or schema errors.
func postJSON(ctx context.Context, client *http.Client, endpoint string, reqBody any, model string, headers map[string]string) ([]byte, error) {
	if err := checkEndpoint(endpoint); err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", apperr.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot reach %s: %v", apperr.ErrTransport, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperr.ErrTransport, err)
	}

	if looksLikeHTML(body) {
		return nil, fmt.Errorf("%w: received an HTML page instead of an API response from %s, verify the endpoint (baseUrl) configuration", apperr.ErrTransport, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp.StatusCode, body, model)
	}
	return body, nil
}

func looksLikeHTML(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func upstreamError(status int, body []byte, model string) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		if strings.Contains(strings.ToLower(env.Error.Message), "model") {
			return fmt.Errorf("%w: unsupported model %s: %s", apperr.ErrUpstream, model, env.Error.Message)
		}
		return fmt.Errorf("%w: status %d: %s", apperr.ErrUpstream, status, env.Error.Message)
	}
	return fmt.Errorf("%w: status %d: %s", apperr.ErrUpstream, status, http.StatusText(status))
}

// IsRetryable reports whether a classifier error may succeed on another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, apperr.ErrTransport) || errors.Is(err, apperr.ErrUpstream) || errors.Is(err, apperr.ErrSchema)
}
