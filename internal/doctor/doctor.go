// Package doctor runs readiness diagnostics for config, credentials, tools,
// audio, and the optional transcription health endpoint.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Options control which live checks run.
type Options struct {
	SkipAudio bool
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded, opts Options) Report {
	checks := []Check{checkConfig(cfg)}

	checks = append(checks, checkCredential("transcription.api_key_env", cfg.Config.Transcription.APIKeyEnv))
	if cfg.Config.Feedback.APIKeyEnv != cfg.Config.Transcription.APIKeyEnv {
		checks = append(checks, checkCredential("feedback.api_key_env", cfg.Config.Feedback.APIKeyEnv))
	}

	checks = append(checks, checkCommand(cfg.Config.Clipboard.Argv, "clipboard_cmd"))
	checks = append(checks, checkCommand(cfg.Config.Picker.Argv, "picker_cmd"))
	checks = append(checks, checkCommand(cfg.Config.Opener.Argv, "open_cmd"))
	if cfg.Config.Indicator.Enable && strings.EqualFold(cfg.Config.Indicator.Backend, "desktop") {
		checks = append(checks, checkBinary("busctl", "desktop notifications use busctl"))
	}

	if !opts.SkipAudio {
		checks = append(checks, checkAudioSelection(ctx, cfg.Config))
	}
	if endpoint := strings.TrimSpace(cfg.Config.Transcription.HealthGRPC); endpoint != "" {
		checks = append(checks, checkGRPCHealth(ctx, endpoint, 2*time.Second))
	}

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q (%s)", cfg.Path, cfg.Format)
	if !cfg.Exists {
		message = fmt.Sprintf("no file at %q; using defaults", cfg.Path)
	}
	if n := len(cfg.Warnings); n > 0 {
		message = fmt.Sprintf("%s with %d warning(s)", message, n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkCredential reports whether the named env var holds a non-empty value.
func checkCredential(name string, env string) Check {
	if strings.TrimSpace(env) == "" {
		return Check{Name: name, Pass: false, Message: "no environment variable configured"}
	}
	if _, ok := config.Credential(env); !ok {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not set", env)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s is set", env)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
