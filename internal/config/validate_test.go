package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "sample rate too low", mutate: func(c *Config) { c.Audio.SampleRate = 100 }, wantErr: "audio.sample_rate"},
		{name: "zero duration", mutate: func(c *Config) { c.Audio.DurationSeconds = 0 }, wantErr: "audio.duration_seconds"},
		{name: "zero progress interval", mutate: func(c *Config) { c.Audio.ProgressIntervalMS = 0 }, wantErr: "progress_interval_ms"},
		{name: "no extensions", mutate: func(c *Config) { c.Catalog.Extensions = nil }, wantErr: "catalog.extensions"},
		{name: "json extension", mutate: func(c *Config) { c.Catalog.Extensions = []string{"html", "json"} }, wantErr: "sidecar"},
		{name: "unknown navigate", mutate: func(c *Config) { c.Session.Navigate = "ask" }, wantErr: "session.navigate"},
		{name: "unknown transcription backend", mutate: func(c *Config) { c.Transcription.Backend = "vosk" }, wantErr: "transcription.backend"},
		{name: "empty transcription model", mutate: func(c *Config) { c.Transcription.Model = "" }, wantErr: "transcription.model"},
		{name: "empty transcription key env", mutate: func(c *Config) { c.Transcription.APIKeyEnv = "" }, wantErr: "transcription.api_key_env"},
		{name: "zero transcription timeout", mutate: func(c *Config) { c.Transcription.TimeoutMS = 0 }, wantErr: "transcription.timeout_ms"},
		{name: "unknown feedback backend", mutate: func(c *Config) { c.Feedback.Backend = "claude" }, wantErr: "feedback.backend"},
		{name: "empty feedback model", mutate: func(c *Config) { c.Feedback.Model = "" }, wantErr: "feedback.model"},
		{name: "empty feedback key env", mutate: func(c *Config) { c.Feedback.APIKeyEnv = "" }, wantErr: "feedback.api_key_env"},
		{name: "zero feedback timeout", mutate: func(c *Config) { c.Feedback.TimeoutMS = 0 }, wantErr: "feedback.timeout_ms"},
		{name: "unknown indicator backend", mutate: func(c *Config) { c.Indicator.Backend = "tray" }, wantErr: "indicator.backend"},
		{name: "desktop without app name", mutate: func(c *Config) {
			c.Indicator.Backend = "desktop"
			c.Indicator.DesktopAppName = " "
		}, wantErr: "desktop_app_name"},
		{name: "negative error timeout", mutate: func(c *Config) { c.Indicator.ErrorTimeoutMS = -1 }, wantErr: "error_timeout"},
		{name: "empty clipboard argv", mutate: func(c *Config) { c.Clipboard.Argv = nil }, wantErr: "clipboard_cmd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnOptionalCollaborators(t *testing.T) {
	cfg := Default()
	cfg.Picker = CommandConfig{}
	cfg.Opener = CommandConfig{}
	cfg.Feedback.Prompt = "  "

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 3)
}

func TestAudioDurations(t *testing.T) {
	cfg := Default()
	require.Equal(t, "20s", cfg.Audio.Duration().String())
	require.Equal(t, "100ms", cfg.Audio.ProgressInterval().String())
	require.Equal(t, "30s", cfg.Transcription.Timeout().String())
	require.Equal(t, "1m0s", cfg.Feedback.Timeout().String())
}
