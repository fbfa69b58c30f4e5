package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/rbright/marker/internal/config"
)

// Viewer opens a submission in the desktop's external viewer.
type Viewer struct {
	argv   []string
	logger *slog.Logger
}

// NewViewer constructs a viewer from the configured open command.
func NewViewer(cfg config.Config, logger *slog.Logger) *Viewer {
	return &Viewer{argv: cfg.Opener.Argv, logger: logger}
}

// Open starts the viewer detached; it does not wait for the window to close.
func (v *Viewer) Open(_ context.Context, path string) error {
	if len(v.argv) == 0 {
		return fmt.Errorf("open command argv cannot be empty")
	}

	args := append(append([]string{}, v.argv[1:]...), path)
	cmd := exec.Command(v.argv[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start viewer %s: %w", v.argv[0], err)
	}
	go func() {
		if err := cmd.Wait(); err != nil && v.logger != nil {
			v.logger.Debug("viewer exited with error", "path", path, "error", err.Error())
		}
	}()
	return nil
}
