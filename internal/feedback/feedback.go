// Package feedback turns a reviewer's transcript into written feedback.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/remote"
)

// Generator produces feedback text for a fully composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Compose places the transcript after the template, joined by separator.
func Compose(template string, transcript string, separator string) string {
	return template + separator + transcript
}

// New selects the configured backend.
func New(cfg config.FeedbackConfig, logger *slog.Logger) (Generator, error) {
	switch strings.ToLower(cfg.Backend) {
	case "gemini":
		return NewGemini(cfg, logger), nil
	case "openai":
		return NewOpenAI(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported feedback backend %q", cfg.Backend)
	}
}

func credential(cfg config.FeedbackConfig, service string) (string, error) {
	key, ok := config.Credential(cfg.APIKeyEnv)
	if !ok {
		return "", remote.MissingCredential(service, cfg.APIKeyEnv)
	}
	return key, nil
}

func withTimeout(ctx context.Context, cfg config.FeedbackConfig) (context.Context, context.CancelFunc) {
	if timeout := cfg.Timeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
