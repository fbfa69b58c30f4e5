package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// filePayload is the on-disk shape shared by the JSONC and YAML formats.
// Pointer fields distinguish "absent" from zero values so defaults survive.
type filePayload struct {
	Audio         *fileAudio         `json:"audio" yaml:"audio"`
	Catalog       *fileCatalog       `json:"catalog" yaml:"catalog"`
	Session       *fileSession       `json:"session" yaml:"session"`
	Transcription *fileTranscription `json:"transcription" yaml:"transcription"`
	Feedback      *fileFeedback      `json:"feedback" yaml:"feedback"`
	Indicator     *fileIndicator     `json:"indicator" yaml:"indicator"`

	ClipboardCmd *string     `json:"clipboard_cmd" yaml:"clipboard_cmd"`
	PickerCmd    *string     `json:"picker_cmd" yaml:"picker_cmd"`
	OpenCmd      *string     `json:"open_cmd" yaml:"open_cmd"`
	EnvFiles     *stringList `json:"env_files" yaml:"env_files"`
	Debug        *fileDebug  `json:"debug" yaml:"debug"`
}

type fileAudio struct {
	Input              *string `json:"input" yaml:"input"`
	Fallback           *string `json:"fallback" yaml:"fallback"`
	SampleRate         *int    `json:"sample_rate" yaml:"sample_rate"`
	DurationSeconds    *int    `json:"duration_seconds" yaml:"duration_seconds"`
	ProgressIntervalMS *int    `json:"progress_interval_ms" yaml:"progress_interval_ms"`
}

type fileCatalog struct {
	Extensions    *stringList `json:"extensions" yaml:"extensions"`
	ExcludeGraded *bool       `json:"exclude_graded" yaml:"exclude_graded"`
}

type fileSession struct {
	Navigate            *string `json:"navigate" yaml:"navigate"`
	DefaultMark         *string `json:"default_mark" yaml:"default_mark"`
	TranscriptSeparator *string `json:"transcript_separator" yaml:"transcript_separator"`
}

type fileTranscription struct {
	Backend      *string `json:"backend" yaml:"backend"`
	Model        *string `json:"model" yaml:"model"`
	LanguageCode *string `json:"language_code" yaml:"language_code"`
	APIKeyEnv    *string `json:"api_key_env" yaml:"api_key_env"`
	BaseURL      *string `json:"base_url" yaml:"base_url"`
	TimeoutMS    *int    `json:"timeout_ms" yaml:"timeout_ms"`
	HealthGRPC   *string `json:"health_grpc" yaml:"health_grpc"`
}

type fileFeedback struct {
	Backend         *string `json:"backend" yaml:"backend"`
	Model           *string `json:"model" yaml:"model"`
	Prompt          *string `json:"prompt" yaml:"prompt"`
	PromptSeparator *string `json:"prompt_separator" yaml:"prompt_separator"`
	APIKeyEnv       *string `json:"api_key_env" yaml:"api_key_env"`
	BaseURL         *string `json:"base_url" yaml:"base_url"`
	TimeoutMS       *int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type fileIndicator struct {
	Enable            *bool   `json:"enable" yaml:"enable"`
	Backend           *string `json:"backend" yaml:"backend"`
	DesktopAppName    *string `json:"desktop_app_name" yaml:"desktop_app_name"`
	SoundEnable       *bool   `json:"sound_enable" yaml:"sound_enable"`
	SoundRecordFile   *string `json:"sound_record_file" yaml:"sound_record_file"`
	SoundCapturedFile *string `json:"sound_captured_file" yaml:"sound_captured_file"`
	SoundTakeFile     *string `json:"sound_take_file" yaml:"sound_take_file"`
	SoundFeedbackFile *string `json:"sound_feedback_file" yaml:"sound_feedback_file"`
	ErrorTimeoutMS    *int    `json:"error_timeout_ms" yaml:"error_timeout_ms"`
}

type fileDebug struct {
	AudioDump *bool   `json:"audio_dump" yaml:"audio_dump"`
	LogLevel  *string `json:"log_level" yaml:"log_level"`
}

// stringList accepts either a list of strings or one comma-delimited string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = splitCommaList(single)
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (payload filePayload) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if a := payload.Audio; a != nil {
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
		setInt(&cfg.Audio.SampleRate, a.SampleRate)
		setInt(&cfg.Audio.DurationSeconds, a.DurationSeconds)
		setInt(&cfg.Audio.ProgressIntervalMS, a.ProgressIntervalMS)
	}

	if c := payload.Catalog; c != nil {
		if c.Extensions != nil {
			cfg.Catalog.Extensions = NormalizeExtensions(*c.Extensions)
		}
		if c.ExcludeGraded != nil {
			cfg.Catalog.ExcludeGraded = *c.ExcludeGraded
		}
	}

	if s := payload.Session; s != nil {
		if s.Navigate != nil {
			cfg.Session.Navigate = strings.ToLower(strings.TrimSpace(*s.Navigate))
		}
		setString(&cfg.Session.DefaultMark, s.DefaultMark)
		if s.TranscriptSeparator != nil {
			cfg.Session.TranscriptSeparator = *s.TranscriptSeparator
		}
	}

	if t := payload.Transcription; t != nil {
		setTrimmed(&cfg.Transcription.Backend, t.Backend)
		setTrimmed(&cfg.Transcription.Model, t.Model)
		setTrimmed(&cfg.Transcription.LanguageCode, t.LanguageCode)
		setTrimmed(&cfg.Transcription.APIKeyEnv, t.APIKeyEnv)
		setTrimmed(&cfg.Transcription.BaseURL, t.BaseURL)
		setInt(&cfg.Transcription.TimeoutMS, t.TimeoutMS)
		setTrimmed(&cfg.Transcription.HealthGRPC, t.HealthGRPC)
	}

	if f := payload.Feedback; f != nil {
		setTrimmed(&cfg.Feedback.Backend, f.Backend)
		setTrimmed(&cfg.Feedback.Model, f.Model)
		if f.Prompt != nil {
			cfg.Feedback.Prompt = *f.Prompt
		}
		if f.PromptSeparator != nil {
			cfg.Feedback.PromptSeparator = *f.PromptSeparator
		}
		setTrimmed(&cfg.Feedback.APIKeyEnv, f.APIKeyEnv)
		setTrimmed(&cfg.Feedback.BaseURL, f.BaseURL)
		setInt(&cfg.Feedback.TimeoutMS, f.TimeoutMS)
	}

	if i := payload.Indicator; i != nil {
		if i.Enable != nil {
			cfg.Indicator.Enable = *i.Enable
		}
		setTrimmed(&cfg.Indicator.Backend, i.Backend)
		setTrimmed(&cfg.Indicator.DesktopAppName, i.DesktopAppName)
		if i.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *i.SoundEnable
		}
		setTrimmed(&cfg.Indicator.SoundRecordFile, i.SoundRecordFile)
		setTrimmed(&cfg.Indicator.SoundCapturedFile, i.SoundCapturedFile)
		setTrimmed(&cfg.Indicator.SoundTakeFile, i.SoundTakeFile)
		setTrimmed(&cfg.Indicator.SoundFeedbackFile, i.SoundFeedbackFile)
		setInt(&cfg.Indicator.ErrorTimeoutMS, i.ErrorTimeoutMS)
	}

	commands := []struct {
		name string
		raw  *string
		dst  *CommandConfig
	}{
		{name: "clipboard_cmd", raw: payload.ClipboardCmd, dst: &cfg.Clipboard},
		{name: "picker_cmd", raw: payload.PickerCmd, dst: &cfg.Picker},
		{name: "open_cmd", raw: payload.OpenCmd, dst: &cfg.Opener},
	}
	for _, cmd := range commands {
		if cmd.raw == nil {
			continue
		}
		argv, err := parseArgv(*cmd.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", cmd.name, err)
		}
		*cmd.dst = CommandConfig{Raw: *cmd.raw, Argv: argv}
	}

	if payload.EnvFiles != nil {
		cfg.EnvFiles = append([]string(nil), (*payload.EnvFiles)...)
	}

	if d := payload.Debug; d != nil {
		if d.AudioDump != nil {
			cfg.Debug.EnableAudioDump = *d.AudioDump
		}
		setTrimmed(&cfg.Debug.LogLevel, d.LogLevel)
	}

	return warnings, nil
}

// NormalizeExtensions lowercases extensions and strips leading dots and blanks.
func NormalizeExtensions(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, ext := range raw {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
