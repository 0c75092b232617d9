package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/apperr"
)

var testFolders = []ai.Folder{
	{ID: "f1", Title: "Development", Path: "Development"},
	{ID: "f2", Title: "Go", Path: "Development/Go"},
}

var testItems = []ai.BatchItem{
	{Title: "Go Docs", URL: "https://go.dev/doc", ID: "b1", ParentID: "f1", ParentTitle: "Development"},
	{Title: "Effective Go", URL: "https://go.dev/doc/effective_go", ID: "b2", ParentID: "", ParentTitle: ""},
}

// chatServer answers every request with a chat completion whose message
// content is content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return rawServer(t, http.StatusOK, chatBody(t, content))
}

func chatBody(t *testing.T, content string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	assert.NilError(t, err)
	return string(b)
}

func rawServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAIConfig(baseURL string) ai.Config {
	cfg := ai.DefaultConfig()
	cfg.Provider = ai.ProviderOpenAI
	cfg.BaseURL = baseURL
	cfg.APIKey = "sk-test-1234"
	return cfg
}

func TestClassifyBatch_Success(t *testing.T) {
	var got struct {
		Model          string            `json:"model"`
		ResponseFormat map[string]string `json:"response_format"`
		Temperature    float64           `json:"temperature"`
		MaxTokens      int               `json:"max_tokens"`
		Messages       []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var path, auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, chatBody(t, `{"recommendations":[
			{"url":"https://go.dev/doc","existingPath":"Development/Go","reason":"Go docs"},
			{"url":"https://go.dev/doc/effective_go","existingPath":"Development/Go","reason":"Go style"}]}`))
	}))
	defer srv.Close()

	client := ai.NewClient(openAIConfig(srv.URL))
	rec, err := client.ClassifyBatch(context.Background(), testItems, testFolders)
	assert.NilError(t, err)

	assert.Equal(t, path, "/v1/chat/completions")
	assert.Equal(t, auth, "Bearer sk-test-1234")
	assert.Equal(t, got.Model, "gpt-4o-mini")
	assert.Equal(t, got.ResponseFormat["type"], "json_object")
	assert.Equal(t, got.Temperature, 0.3)
	assert.Equal(t, got.MaxTokens, 4096)
	assert.Equal(t, len(got.Messages), 2)
	assert.Equal(t, got.Messages[0].Role, "system")
	assert.Check(t, is.Contains(got.Messages[1].Content, "Development/Go"))
	assert.Check(t, is.Contains(got.Messages[1].Content, "https://go.dev/doc/effective_go"))

	assert.Equal(t, len(rec.Recommendations), 2)
	assert.Equal(t, rec.Recommendations[1].ExistingPath, "Development/Go")
}

func TestClassifyBatch_DecodeVariants(t *testing.T) {
	payload := `{"recommendations":[{"url":"https://go.dev/doc","existingPath":"Development/Go","reason":"r"}]}`
	quoted, err := json.Marshal(payload)
	assert.NilError(t, err)

	tests := []struct {
		name    string
		content string
	}{
		{"plain", payload},
		{"string encoded", string(quoted)},
		{"fenced", "```json\n" + payload + "\n```"},
		{"fenced string encoded", "```\n" + string(quoted) + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.content)
			client := ai.NewClient(openAIConfig(srv.URL))

			rec, err := client.ClassifyBatch(context.Background(), testItems[:1], testFolders)
			assert.NilError(t, err)
			assert.Equal(t, len(rec.Recommendations), 1)
			assert.Equal(t, rec.Recommendations[0].ExistingPath, "Development/Go")
		})
	}
}

func TestClassifyBatch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "html page from proxy",
			status:  http.StatusOK,
			body:    "<!DOCTYPE html><html><body>proxy</body></html>",
			wantErr: apperr.ErrTransport,
			wantMsg: "verify the endpoint",
		},
		{
			name:    "html error page",
			status:  http.StatusBadGateway,
			body:    "<html><body>bad gateway</body></html>",
			wantErr: apperr.ErrTransport,
			wantMsg: "verify the endpoint",
		},
		{
			name:    "unsupported model",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"The model gpt-x does not exist"}}`,
			wantErr: apperr.ErrUpstream,
			wantMsg: "unsupported model gpt-4o-mini",
		},
		{
			name:    "auth failure",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Incorrect API key provided"}}`,
			wantErr: apperr.ErrUpstream,
			wantMsg: "Incorrect API key provided",
		},
		{
			name:    "status without body",
			status:  http.StatusTooManyRequests,
			body:    ``,
			wantErr: apperr.ErrUpstream,
			wantMsg: "Too Many Requests",
		},
		{
			name:    "envelope not json",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: apperr.ErrSchema,
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: apperr.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rawServer(t, tt.status, tt.body)
			client := ai.NewClient(openAIConfig(srv.URL))

			_, err := client.ClassifyBatch(context.Background(), testItems, testFolders)
			assert.Assert(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.wantMsg != "" {
				assert.Check(t, is.Contains(err.Error(), tt.wantMsg))
			}
		})
	}
}

func TestClassifyBatch_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"content not json", "I would put these in Development."},
		{"inner string not json", `"just words"`},
		{"missing recommendations", `{"result":[]}`},
		{"wrong type", `{"recommendations":"Development"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.content)
			client := ai.NewClient(openAIConfig(srv.URL))

			_, err := client.ClassifyBatch(context.Background(), testItems, testFolders)
			assert.Assert(t, errors.Is(err, apperr.ErrSchema), "got %v", err)
		})
	}
}

func TestClassifyBatch_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := ai.NewClient(openAIConfig(url))
	_, err := client.ClassifyBatch(context.Background(), testItems, testFolders)
	assert.Assert(t, errors.Is(err, apperr.ErrTransport), "got %v", err)
}

func TestClassifyBatch_MalformedEndpoint(t *testing.T) {
	called := false
	completer := completerFunc(func(ctx context.Context, p ai.Prompt) (string, error) {
		called = true
		return "{}", nil
	})

	cfg := ai.DefaultConfig()
	cfg.Provider = ai.ProviderDeepSeek
	cfg.BaseURL = "api.deepseek.com/chat"
	cfg.APIKey = "key"

	client := ai.NewClient(cfg, ai.WithCompleter(completer))
	_, err := client.ClassifyBatch(context.Background(), testItems, testFolders)
	assert.Assert(t, errors.Is(err, apperr.ErrTransport), "got %v", err)
	assert.Assert(t, !called, "no call may be issued to a malformed endpoint")
}

func TestReady_MissingKey(t *testing.T) {
	t.Setenv("BMSORT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := ai.DefaultConfig()
	client := ai.NewClient(cfg)

	err := client.Ready()
	assert.Assert(t, errors.Is(err, apperr.ErrConfig))
	assert.Check(t, is.Contains(err.Error(), "OPENAI_API_KEY"))

	_, err = client.ClassifyBatch(context.Background(), testItems, testFolders)
	assert.Assert(t, errors.Is(err, apperr.ErrConfig))
}

func TestReady_KeyFromEnvironment(t *testing.T) {
	t.Setenv("BMSORT_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")

	cfg := ai.DefaultConfig()
	cfg.Provider = ai.ProviderDeepSeek
	assert.NilError(t, ai.NewClient(cfg).Ready())

	t.Setenv("BMSORT_API_KEY", "generic")
	assert.Equal(t, cfg.ResolveAPIKey(), "generic")
}

func TestClassifyOne(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		existing bool
		path     string
	}{
		{"existing folder", `{"useExisting":true,"existingPath":"Development/Go","reason":"docs"}`, false, true, "Development/Go"},
		{"new folder", `{"useExisting":false,"newPath":"Tools/CLI","reason":"new topic"}`, false, false, "Tools/CLI"},
		{"existing without path", `{"useExisting":true,"reason":"?"}`, true, false, ""},
		{"new without path", `{"useExisting":false,"existingPath":"Development"}`, true, false, ""},
		{"missing useExisting", `{"existingPath":"Development"}`, true, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.content)
			client := ai.NewClient(openAIConfig(srv.URL))

			rec, err := client.ClassifyOne(context.Background(),
				ai.Page{Title: "Cobra", URL: "https://cobra.dev", Description: "CLI library"}, testFolders)
			if tt.wantErr {
				assert.Assert(t, errors.Is(err, apperr.ErrSchema), "got %v", err)
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, rec.Existing(), tt.existing)
			if tt.existing {
				assert.Equal(t, rec.ExistingPath, tt.path)
			} else {
				assert.Equal(t, rec.NewPath, tt.path)
			}
		})
	}
}

func TestAnthropicProvider(t *testing.T) {
	var apiKey, version string
	var req struct {
		Model  string `json:"model"`
		System string `json:"system"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"{\"recommendations\":[]}"}],"stop_reason":"end_turn"}`)
	}))
	defer srv.Close()

	cfg := ai.DefaultConfig()
	cfg.Provider = ai.ProviderAnthropic
	cfg.BaseURL = srv.URL + "/v1/messages"
	cfg.APIKey = "ant-key"

	rec, err := ai.NewClient(cfg).ClassifyBatch(context.Background(), testItems, testFolders)
	assert.NilError(t, err)
	assert.Equal(t, len(rec.Recommendations), 0)
	assert.Equal(t, apiKey, "ant-key")
	assert.Equal(t, version, "2023-06-01")
	assert.Equal(t, req.Model, "claude-haiku-4-5")
	assert.Assert(t, req.System != "")
}

func TestConfig_Endpoint(t *testing.T) {
	tests := []struct {
		provider string
		baseURL  string
		want     string
	}{
		{ai.ProviderOpenAI, "", "https://api.openai.com/v1/chat/completions"},
		{ai.ProviderOpenAI, "https://proxy.example.com", "https://proxy.example.com/v1/chat/completions"},
		{ai.ProviderOpenAI, "https://proxy.example.com/", "https://proxy.example.com/v1/chat/completions"},
		{ai.ProviderOpenAI, "https://proxy.example.com/v1/chat/completions", "https://proxy.example.com/v1/chat/completions"},
		{ai.ProviderDeepSeek, "", "https://api.deepseek.com/chat/completions"},
		{ai.ProviderDeepSeek, "https://proxy.example.com/ds", "https://proxy.example.com/ds"},
		{ai.ProviderAnthropic, "", "https://api.anthropic.com/v1/messages"},
		{ai.ProviderGemini, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider+" "+tt.baseURL, func(t *testing.T) {
			cfg := ai.Config{Provider: tt.provider, BaseURL: tt.baseURL}
			got, err := cfg.Endpoint()
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := ai.DefaultConfig()
	assert.NilError(t, cfg.Validate())

	cfg.Provider = "llama"
	assert.Assert(t, cfg.Validate() != nil)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, ai.MaskKey("sk-abcdef1234"), "*********1234")
	assert.Equal(t, ai.MaskKey("abc"), "***")
	assert.Assert(t, !strings.Contains(ai.MaskKey("secret-value"), "secret"))
}

type completerFunc func(ctx context.Context, p ai.Prompt) (string, error)

func (f completerFunc) Complete(ctx context.Context, p ai.Prompt) (string, error) {
	return f(ctx, p)
}
