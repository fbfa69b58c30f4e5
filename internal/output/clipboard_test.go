package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/marker/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRunCommandWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := runCommandWithInput(context.Background(), []string{scriptPath, outputPath}, "hello from marker")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from marker", string(data))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestClipboardCopyWritesFeedback(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}

	err := NewClipboard(cfg, nil).Copy(context.Background(), "Well structured essay.")
	require.NoError(t, err)

	data, err := os.ReadFile(clipboardPath)
	require.NoError(t, err)
	require.Equal(t, "Well structured essay.", string(data))
}

func TestClipboardCopySkipsEmptyText(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}

	require.NoError(t, NewClipboard(cfg, nil).Copy(context.Background(), ""))

	_, statErr := os.Stat(clipboardPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestClipboardCopyReturnsErrorWhenCommandFails(t *testing.T) {
	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{writeScript(t, "fail.sh", "echo 'clipboard failed' >&2\nexit 3")}}

	err := NewClipboard(cfg, nil).Copy(context.Background(), "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "set clipboard")
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()
	return writeScript(t, "capture-stdin.sh", `cat > "$1"`)
}

func writeScript(t *testing.T, name string, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
