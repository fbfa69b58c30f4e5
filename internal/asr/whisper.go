package asr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/remote"
	openai "github.com/sashabaranov/go-openai"
)

type transcriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Whisper transcribes clips with an OpenAI-compatible audio endpoint.
type Whisper struct {
	cfg       config.TranscriptionConfig
	logger    *slog.Logger
	newClient func(apiKey string, baseURL string) transcriptionClient
}

// NewWhisper builds a Whisper-backed transcriber.
func NewWhisper(cfg config.TranscriptionConfig, logger *slog.Logger) *Whisper {
	return &Whisper{
		cfg:    cfg,
		logger: logger,
		newClient: func(apiKey string, baseURL string) transcriptionClient {
			return remote.NewOpenAIClient(apiKey, baseURL)
		},
	}
}

// Transcribe implements Transcriber.
func (w *Whisper) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	key, err := credential(w.cfg, "whisper")
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, w.cfg)
	defer cancel()

	resp, err := w.newClient(key, w.cfg.BaseURL).CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.cfg.Model,
		FilePath: "commentary.wav",
		Reader:   bytes.NewReader(clip.WAV()),
		Language: isoLanguage(w.cfg.LanguageCode),
	})
	if err != nil {
		if rejectedAudio(err) {
			return "", fmt.Errorf("%w: %v", ErrUnintelligibleAudio, err)
		}
		return "", remote.Classify(ctx, "whisper", err)
	}

	debugLog(w.logger, "whisper transcription complete", "model", w.cfg.Model, "chars", len(resp.Text))
	return strings.TrimSpace(resp.Text), nil
}

// rejectedAudio reports a 400 caused by the clip itself. Other bad requests
// (unknown model, bad parameters) are service failures.
func rejectedAudio(err error) bool {
	if remote.OpenAIStatus(err) != http.StatusBadRequest {
		return false
	}
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if code, ok := apiErr.Code.(string); ok && strings.HasPrefix(code, "audio_") {
		return true
	}
	if apiErr.Param != nil && *apiErr.Param == "file" {
		return true
	}
	message := strings.ToLower(apiErr.Message)
	for _, hint := range []string{"could not decode", "could not be decoded", "too short", "no speech"} {
		if strings.Contains(message, hint) {
			return true
		}
	}
	return false
}

// isoLanguage reduces a BCP-47 tag like "en-US" to its ISO-639-1 prefix.
func isoLanguage(code string) string {
	code = strings.TrimSpace(code)
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return strings.ToLower(code)
}
