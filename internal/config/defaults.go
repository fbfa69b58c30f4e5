package config

// DefaultPrompt is prefixed to the transcript before generation.
const DefaultPrompt = "Use the below transcript to generate a short constructive feedback for a student submission. Here is the transcript:"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"
	picker := "zenity --file-selection --directory --title 'Select submissions folder'"
	opener := "xdg-open"

	return Config{
		Audio: AudioConfig{
			Input:              "default",
			Fallback:           "default",
			SampleRate:         44100,
			DurationSeconds:    20,
			ProgressIntervalMS: 100,
		},
		Catalog: CatalogConfig{
			Extensions:    []string{"html", "docx", "pdf"},
			ExcludeGraded: true,
		},
		Session: SessionConfig{
			Navigate:            NavigateWarn,
			DefaultMark:         "0",
			TranscriptSeparator: "\n",
		},
		Transcription: TranscriptionConfig{
			Backend:      "gemini",
			Model:        "gemini-2.0-flash",
			LanguageCode: "en-US",
			APIKeyEnv:    "GEMINI_API_KEY",
			TimeoutMS:    30000,
		},
		Feedback: FeedbackConfig{
			Backend:         "gemini",
			Model:           "gemini-2.0-flash",
			Prompt:          DefaultPrompt,
			PromptSeparator: " ",
			APIKeyEnv:       "GEMINI_API_KEY",
			TimeoutMS:       60000,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        "terminal",
			DesktopAppName: "marker",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
		Clipboard: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
		Picker:    CommandConfig{Raw: picker, Argv: mustParseArgv(picker)},
		Opener:    CommandConfig{Raw: opener, Argv: mustParseArgv(opener)},
		EnvFiles:  []string{".env"},
		Debug:     DebugConfig{LogLevel: "info"},
	}
}
