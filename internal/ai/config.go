package ai

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

// Providers.
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	openAIChatURL   = "https://api.openai.com/v1/chat/completions"
	openAIChatPath  = "/v1/chat/completions"
	deepSeekChatURL = "https://api.deepseek.com/chat/completions"
	anthropicURL    = "https://api.anthropic.com/v1/messages"
)

// Config holds classifier settings.
type Config struct {
	Provider       string  `json:"provider"`
	BaseURL        string  `json:"baseUrl,omitempty"`
	Model          string  `json:"model,omitempty"`
	APIKey         string  `json:"apiKey,omitempty"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"maxTokens"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderOpenAI,
		Temperature:    0.3,
		MaxTokens:      4096,
		TimeoutSeconds: 60,
	}
}

// Validate validates the classifier configuration. Credentials are checked
// separately by Ready so a config without a key still loads.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required,
			validation.In(ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGemini)),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
	)
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderAnthropic:
		return "claude-haiku-4-5"
	case ProviderGemini:
		return "gemini-1.5-flash"
	default:
		return "gpt-4o-mini"
	}
}

// Timeout returns the per-call timeout, zero meaning none.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveAPIKey returns the API key from config, BMSORT_API_KEY, or the
// provider's conventional environment variable, in that order.
func (c Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if key := os.Getenv("BMSORT_API_KEY"); key != "" {
		return key
	}
	return os.Getenv(providerKeyEnv(c.Provider))
}

func providerKeyEnv(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Endpoint returns the HTTP endpoint for the provider. Gemini goes through
// the SDK and has no endpoint unless BaseURL overrides it.
func (c Config) Endpoint() (string, error) {
	var endpoint string
	switch c.Provider {
	case ProviderOpenAI:
		endpoint = openAIChatURL
		if c.BaseURL != "" {
			endpoint = strings.TrimRight(c.BaseURL, "/")
			if !strings.HasSuffix(endpoint, openAIChatPath) {
				endpoint += openAIChatPath
			}
		}
	case ProviderDeepSeek:
		endpoint = deepSeekChatURL
		if c.BaseURL != "" {
			endpoint = c.BaseURL
		}
	case ProviderAnthropic:
		endpoint = anthropicURL
		if c.BaseURL != "" {
			endpoint = c.BaseURL
		}
	case ProviderGemini:
		if c.BaseURL == "" {
			return "", nil
		}
		endpoint = c.BaseURL
	default:
		return "", fmt.Errorf("%w: unknown provider %q", apperr.ErrConfig, c.Provider)
	}

	if err := checkEndpoint(endpoint); err != nil {
		return "", err
	}
	return endpoint, nil
}

func checkEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: invalid endpoint %q, check the baseUrl setting", apperr.ErrTransport, endpoint)
	}
	return nil
}

// MaskKey masks all but the last four characters of an API key for logging.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
