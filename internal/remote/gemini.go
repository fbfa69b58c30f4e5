package remote

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiModels is the slice of the genai Models service used by marker.
type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiFactory builds a Models client for one API key.
type GeminiFactory func(ctx context.Context, apiKey string, baseURL string) (GeminiModels, error)

// NewGeminiModels creates a Gemini API client.
func NewGeminiModels(ctx context.Context, apiKey string, baseURL string) (GeminiModels, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client.Models, nil
}

// GeminiText concatenates the text parts of the first candidate.
func GeminiText(result *genai.GenerateContentResponse) (string, bool) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", false
	}
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), true
}
