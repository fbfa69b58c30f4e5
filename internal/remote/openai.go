package remote

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAIClient creates an OpenAI-compatible client, optionally against a
// custom base URL.
func NewOpenAIClient(apiKey string, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIStatus extracts the HTTP status code from a go-openai error, or 0.
func OpenAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
