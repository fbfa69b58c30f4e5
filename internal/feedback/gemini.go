package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/remote"
	"google.golang.org/genai"
)

// Gemini generates feedback with the Gemini API.
type Gemini struct {
	cfg     config.FeedbackConfig
	logger  *slog.Logger
	factory remote.GeminiFactory
}

// NewGemini builds a Gemini-backed generator.
func NewGemini(cfg config.FeedbackConfig, logger *slog.Logger) *Gemini {
	return &Gemini{cfg: cfg, logger: logger, factory: remote.NewGeminiModels}
}

// Generate implements Generator. The reply is returned verbatim.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	key, err := credential(g.cfg, "gemini")
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, g.cfg)
	defer cancel()

	models, err := g.factory(ctx, key, g.cfg.BaseURL)
	if err != nil {
		return "", remote.Classify(ctx, "gemini", err)
	}

	started := time.Now()
	result, err := models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", remote.Classify(ctx, "gemini", err)
	}
	text, ok := remote.GeminiText(result)
	if !ok {
		return "", &remote.Error{Service: "gemini", Kind: remote.ErrServiceUnavailable, Cause: fmt.Errorf("empty response")}
	}

	if g.logger != nil {
		g.logger.Debug("feedback generated", "backend", "gemini", "model", g.cfg.Model,
			"prompt_chars", len(prompt), "reply_chars", len(text), "latency_ms", time.Since(started).Milliseconds())
	}
	return text, nil
}
