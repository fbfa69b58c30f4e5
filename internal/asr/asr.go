// Package asr converts recorded clips to text through hosted speech services.
package asr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/remote"
)

// ErrUnintelligibleAudio reports that the service produced no hypothesis.
var ErrUnintelligibleAudio = errors.New("audio could not be transcribed")

// Transcriber turns one clip into text. Empty text with a nil error means
// the clip was silent.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)
}

// New selects the configured backend.
func New(cfg config.TranscriptionConfig, logger *slog.Logger) (Transcriber, error) {
	switch strings.ToLower(cfg.Backend) {
	case "gemini":
		return NewGemini(cfg, logger), nil
	case "whisper":
		return NewWhisper(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported transcription backend %q", cfg.Backend)
	}
}

func credential(cfg config.TranscriptionConfig, service string) (string, error) {
	key, ok := config.Credential(cfg.APIKeyEnv)
	if !ok {
		return "", remote.MissingCredential(service, cfg.APIKeyEnv)
	}
	return key, nil
}

func withTimeout(ctx context.Context, cfg config.TranscriptionConfig) (context.Context, context.CancelFunc) {
	if timeout := cfg.Timeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func debugLog(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
