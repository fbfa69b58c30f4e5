package config

import (
	"fmt"
	"strings"
)

var (
	transcriptionBackends = []string{"gemini", "whisper"}
	feedbackBackends      = []string{"gemini", "openai"}
	indicatorBackends     = []string{"terminal", "desktop"}
	navigatePolicies      = []string{NavigateWarn, NavigateSave, NavigateBlock}
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 192000 {
		return nil, fmt.Errorf("audio.sample_rate must be between 8000 and 192000")
	}
	if cfg.Audio.DurationSeconds <= 0 || cfg.Audio.DurationSeconds > 600 {
		return nil, fmt.Errorf("audio.duration_seconds must be between 1 and 600")
	}
	if cfg.Audio.ProgressIntervalMS <= 0 {
		return nil, fmt.Errorf("audio.progress_interval_ms must be > 0")
	}

	if len(cfg.Catalog.Extensions) == 0 {
		return nil, fmt.Errorf("catalog.extensions must not be empty")
	}
	for _, ext := range cfg.Catalog.Extensions {
		if ext == "json" {
			return nil, fmt.Errorf("catalog.extensions must not include json; it is the sidecar format")
		}
	}

	if !oneOf(cfg.Session.Navigate, navigatePolicies) {
		return nil, fmt.Errorf("session.navigate must be one of: %s", strings.Join(navigatePolicies, ", "))
	}

	if !oneOf(cfg.Transcription.Backend, transcriptionBackends) {
		return nil, fmt.Errorf("transcription.backend must be one of: %s", strings.Join(transcriptionBackends, ", "))
	}
	if cfg.Transcription.Model == "" {
		return nil, fmt.Errorf("transcription.model must not be empty")
	}
	if cfg.Transcription.APIKeyEnv == "" {
		return nil, fmt.Errorf("transcription.api_key_env must not be empty")
	}
	if cfg.Transcription.TimeoutMS <= 0 {
		return nil, fmt.Errorf("transcription.timeout_ms must be > 0")
	}

	if !oneOf(cfg.Feedback.Backend, feedbackBackends) {
		return nil, fmt.Errorf("feedback.backend must be one of: %s", strings.Join(feedbackBackends, ", "))
	}
	if cfg.Feedback.Model == "" {
		return nil, fmt.Errorf("feedback.model must not be empty")
	}
	if cfg.Feedback.APIKeyEnv == "" {
		return nil, fmt.Errorf("feedback.api_key_env must not be empty")
	}
	if cfg.Feedback.TimeoutMS <= 0 {
		return nil, fmt.Errorf("feedback.timeout_ms must be > 0")
	}
	if strings.TrimSpace(cfg.Feedback.Prompt) == "" {
		warnings = append(warnings, Warning{Message: "feedback.prompt is empty; the transcript is sent without instructions"})
	}

	backend := strings.ToLower(cfg.Indicator.Backend)
	if !oneOf(backend, indicatorBackends) {
		return nil, fmt.Errorf("indicator.backend must be one of: %s", strings.Join(indicatorBackends, ", "))
	}
	if backend == "desktop" && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd must not be empty")
	}
	if len(cfg.Picker.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "picker_cmd is empty; review requires a folder argument"})
	}
	if len(cfg.Opener.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "open_cmd is empty; PDF/DOCX submissions cannot be opened"})
	}

	return warnings, nil
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
