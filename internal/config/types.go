// Package config resolves, parses, validates, and defaults marker configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by marker.
type Config struct {
	Audio         AudioConfig
	Catalog       CatalogConfig
	Session       SessionConfig
	Transcription TranscriptionConfig
	Feedback      FeedbackConfig
	Indicator     IndicatorConfig
	Clipboard     CommandConfig
	Picker        CommandConfig
	Opener        CommandConfig
	EnvFiles      []string
	Debug         DebugConfig
}

// AudioConfig controls input-source selection and the fixed recording shape.
type AudioConfig struct {
	Input              string
	Fallback           string
	SampleRate         int
	DurationSeconds    int
	ProgressIntervalMS int
}

// Duration is the fixed length of one recording take.
func (a AudioConfig) Duration() time.Duration {
	return time.Duration(a.DurationSeconds) * time.Second
}

// ProgressInterval is the progress polling period while recording.
func (a AudioConfig) ProgressInterval() time.Duration {
	return time.Duration(a.ProgressIntervalMS) * time.Millisecond
}

// CatalogConfig controls which files in a folder count as submissions.
type CatalogConfig struct {
	Extensions    []string
	ExcludeGraded bool
}

// SessionConfig controls per-submission workflow policy.
type SessionConfig struct {
	Navigate            string
	DefaultMark         string
	TranscriptSeparator string
}

// Navigation policies applied when leaving a submission with unsaved work.
const (
	NavigateWarn  = "warn"
	NavigateSave  = "save"
	NavigateBlock = "block"
)

// TranscriptionConfig selects and parameterizes the speech-to-text backend.
type TranscriptionConfig struct {
	Backend      string
	Model        string
	LanguageCode string
	APIKeyEnv    string
	BaseURL      string
	TimeoutMS    int
	HealthGRPC   string
}

// Timeout bounds one transcription request.
func (t TranscriptionConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMS) * time.Millisecond
}

// FeedbackConfig selects and parameterizes the generative-text backend.
type FeedbackConfig struct {
	Backend         string
	Model           string
	Prompt          string
	PromptSeparator string
	APIKeyEnv       string
	BaseURL         string
	TimeoutMS       int
}

// Timeout bounds one generation request.
func (f FeedbackConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// IndicatorConfig controls progress display and audio cue behavior.
type IndicatorConfig struct {
	Enable            bool
	Backend           string
	DesktopAppName    string
	SoundEnable       bool
	SoundRecordFile   string
	SoundCapturedFile string
	SoundTakeFile     string
	SoundFeedbackFile string
	ErrorTimeoutMS    int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls log verbosity and optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
	LogLevel        string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
