package feedback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/remote"
	openai "github.com/sashabaranov/go-openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI generates feedback with an OpenAI-compatible chat endpoint.
type OpenAI struct {
	cfg       config.FeedbackConfig
	logger    *slog.Logger
	newClient func(apiKey string, baseURL string) chatClient
}

// NewOpenAI builds a chat-completion generator.
func NewOpenAI(cfg config.FeedbackConfig, logger *slog.Logger) *OpenAI {
	return &OpenAI{
		cfg:    cfg,
		logger: logger,
		newClient: func(apiKey string, baseURL string) chatClient {
			return remote.NewOpenAIClient(apiKey, baseURL)
		},
	}
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	key, err := credential(o.cfg, "openai")
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, o.cfg)
	defer cancel()

	resp, err := o.newClient(key, o.cfg.BaseURL).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", remote.Classify(ctx, "openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", &remote.Error{Service: "openai", Kind: remote.ErrServiceUnavailable, Cause: fmt.Errorf("no choices returned")}
	}

	text := resp.Choices[0].Message.Content
	if o.logger != nil {
		o.logger.Debug("feedback generated", "backend", "openai", "model", o.cfg.Model,
			"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	}
	return text, nil
}
