package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

// geminiCompleter calls Google Gemini through the generative-ai SDK.
type geminiCompleter struct {
	apiKey   string
	endpoint string
}

func (g *geminiCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	opts := []option.ClientOption{option.WithAPIKey(g.apiKey)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: create gemini client: %v", apperr.ErrTransport, err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.Model)
	model.SetTemperature(float32(p.Temperature))
	model.SetMaxOutputTokens(int32(p.MaxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}

	resp, err := model.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", geminiError(err, p.Model)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned from gemini", apperr.ErrSchema)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content returned from gemini", apperr.ErrSchema)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: unexpected response format from gemini", apperr.ErrSchema)
	}
	return sb.String(), nil
}

func geminiError(err error, model string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if strings.Contains(strings.ToLower(gerr.Message), "model") {
			return fmt.Errorf("%w: unsupported model %s: %s", apperr.ErrUpstream, model, gerr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", apperr.ErrUpstream, gerr.Code, gerr.Message)
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	return fmt.Errorf("%w: gemini: %v", apperr.ErrTransport, err)
}
