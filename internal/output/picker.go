package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rbright/marker/internal/config"
)

// ErrPickerCancelled reports that the reviewer dismissed the folder picker.
var ErrPickerCancelled = errors.New("folder selection cancelled")

// Picker asks the reviewer for a submissions folder via an external dialog.
type Picker struct {
	argv []string
}

// NewPicker constructs a picker from the configured picker command.
func NewPicker(cfg config.Config) *Picker {
	return &Picker{argv: cfg.Picker.Argv}
}

// Pick runs the dialog and returns the selected path from its stdout.
// Exit status 1 or empty output is treated as cancellation.
func (p *Picker) Pick(ctx context.Context) (string, error) {
	if len(p.argv) == 0 {
		return "", fmt.Errorf("picker command argv cannot be empty")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrPickerCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("run picker %s: %w (%s)", p.argv[0], err, msg)
		}
		return "", fmt.Errorf("run picker %s: %w", p.argv[0], err)
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", ErrPickerCancelled
	}
	return path, nil
}
