package asr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/remote"
	"google.golang.org/genai"
)

const (
	unintelligibleMarker = "[UNINTELLIGIBLE]"
	silenceMarker        = "[SILENCE]"
)

const geminiInstructions = `Transcribe the spoken words in this recording verbatim. The speaker is a reviewer commenting on a student's work; the language is %s.
Reply with the transcript text only, without timestamps, speaker labels or commentary.
If the recording contains no speech, reply exactly ` + silenceMarker + `.
If there is speech but it cannot be understood, reply exactly ` + unintelligibleMarker + `.`

// Gemini transcribes clips by sending them as inline WAV audio.
type Gemini struct {
	cfg     config.TranscriptionConfig
	logger  *slog.Logger
	factory remote.GeminiFactory
}

// NewGemini builds a Gemini-backed transcriber.
func NewGemini(cfg config.TranscriptionConfig, logger *slog.Logger) *Gemini {
	return &Gemini{cfg: cfg, logger: logger, factory: remote.NewGeminiModels}
}

// Transcribe implements Transcriber.
func (g *Gemini) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
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

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(fmt.Sprintf(geminiInstructions, g.cfg.LanguageCode)),
			genai.NewPartFromBytes(clip.WAV(), "audio/wav"),
		}, genai.RoleUser),
	}

	started := time.Now()
	result, err := models.GenerateContent(ctx, g.cfg.Model, contents, nil)
	if err != nil {
		return "", remote.Classify(ctx, "gemini", err)
	}
	text, ok := remote.GeminiText(result)
	if !ok {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrUnintelligibleAudio)
	}
	debugLog(g.logger, "gemini transcription complete", "model", g.cfg.Model, "latency_ms", time.Since(started).Milliseconds())

	return interpretReply(text)
}

func interpretReply(text string) (string, error) {
	text = strings.TrimSpace(text)
	switch {
	case strings.EqualFold(text, silenceMarker):
		return "", nil
	case strings.EqualFold(text, unintelligibleMarker):
		return "", fmt.Errorf("%w: no intelligible speech", ErrUnintelligibleAudio)
	default:
		return text, nil
	}
}
