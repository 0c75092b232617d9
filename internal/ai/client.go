// Package ai classifies bookmarks into folders with a language model.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

// Client is the classifier gateway. It sends one batch or one page per call
// and returns a validated recommendation. It never retries.
type Client struct {
	cfg         Config
	apiKey      string
	endpoint    string
	endpointErr error
	httpClient  *http.Client
	completer   Completer
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCompleter replaces the provider transport.
func WithCompleter(c Completer) Option {
	return func(cl *Client) { cl.completer = c }
}

// WithHTTPClient sets the HTTP client used by HTTP transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) { cl.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a classifier client for cfg. Missing credentials are
// reported by Ready, not here.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		apiKey: cfg.ResolveAPIKey(),
	}
	c.endpoint, c.endpointErr = cfg.Endpoint()

	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.completer == nil {
		c.completer = c.newCompleter()
	}
	return c
}

func (c *Client) newCompleter() Completer {
	switch c.cfg.Provider {
	case ProviderAnthropic:
		return &anthropicCompleter{endpoint: c.endpoint, apiKey: c.apiKey, httpClient: c.httpClient}
	case ProviderGemini:
		return &geminiCompleter{apiKey: c.apiKey, endpoint: c.endpoint}
	default:
		return &chatCompleter{endpoint: c.endpoint, apiKey: c.apiKey, httpClient: c.httpClient}
	}
}

// Ready returns a config error when no API key is configured.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: no API key for provider %s, set ai.apiKey, BMSORT_API_KEY or %s",
			apperr.ErrConfig, c.cfg.Provider, providerKeyEnv(c.cfg.Provider))
	}
	return nil
}

// ClassifyBatch asks for an existing folder for every item. The returned
// recommendations are aligned with items by position.
func (c *Client) ClassifyBatch(ctx context.Context, items []BatchItem, folders []Folder) (*BatchRecommendation, error) {
	prompt, err := buildBatchPrompt(items, folders)
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var rec BatchRecommendation
	if err := decodePayload(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ClassifyOne asks for a folder for a single page, which may be a new one.
func (c *Client) ClassifyOne(ctx context.Context, page Page, folders []Folder) (*Recommendation, error) {
	prompt, err := buildPagePrompt(page, folders)
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var rec Recommendation
	if err := decodePayload(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) complete(ctx context.Context, user string) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}
	if c.endpointErr != nil {
		return "", c.endpointErr
	}

	if timeout := c.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	model := c.cfg.ModelName()
	c.logger.Debug("ai: calling classifier",
		slog.String("provider", c.cfg.Provider),
		slog.String("model", model),
		slog.String("endpoint", c.endpoint),
		slog.String("apiKey", MaskKey(c.apiKey)))

	start := time.Now()
	raw, err := c.completer.Complete(ctx, Prompt{
		Model:       model,
		System:      systemPrompt,
		User:        user,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		c.logger.Debug("ai: classifier call failed",
			slog.String("kind", apperr.Kind(err)),
			slog.Duration("elapsed", time.Since(start)))
		return "", err
	}

	c.logger.Debug("ai: classifier answered",
		slog.Int("bytes", len(raw)),
		slog.Duration("elapsed", time.Since(start)))
	return raw, nil
}

// decodePayload decodes the model's text answer into v. The answer may be
// fenced as Markdown or encoded once more as a JSON string.
func decodePayload(raw string, v validation.Validatable) error {
	text := stripFences(raw)
	if strings.HasPrefix(text, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err != nil {
			return fmt.Errorf("%w: decode string payload: %v", apperr.ErrSchema, err)
		}
		text = stripFences(inner)
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: decode payload: %v", apperr.ErrSchema, err)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrSchema, err)
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
