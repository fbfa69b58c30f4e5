// Package output runs the external desktop collaborators: clipboard, viewer,
// and folder picker.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/rbright/marker/internal/config"
)

// Clipboard copies feedback text through the configured clipboard command.
type Clipboard struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClipboard constructs a clipboard writer from runtime config.
func NewClipboard(cfg config.Config, logger *slog.Logger) *Clipboard {
	return &Clipboard{argv: cfg.Clipboard.Argv, timeout: 2 * time.Second, logger: logger}
}

// Copy writes text to the clipboard command's stdin. Empty text is a no-op.
func (c *Clipboard) Copy(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	clipboardCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := runCommandWithInput(clipboardCtx, c.argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("clipboard set", "chars", len([]rune(text)))
	}
	return nil
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
