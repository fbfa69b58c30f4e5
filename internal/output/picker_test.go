package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbright/marker/internal/config"
	"github.com/stretchr/testify/require"
)

func pickerWith(t *testing.T, body string) *Picker {
	t.Helper()
	cfg := config.Default()
	cfg.Picker = config.CommandConfig{Argv: []string{writeScript(t, "picker.sh", body)}}
	return NewPicker(cfg)
}

func TestPickerReturnsTrimmedSelection(t *testing.T) {
	path, err := pickerWith(t, `echo "/home/reviewer/essays"`).Pick(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/home/reviewer/essays", path)
}

func TestPickerExitOneIsCancellation(t *testing.T) {
	_, err := pickerWith(t, "exit 1").Pick(context.Background())
	require.ErrorIs(t, err, ErrPickerCancelled)
}

func TestPickerEmptyOutputIsCancellation(t *testing.T) {
	_, err := pickerWith(t, "true").Pick(context.Background())
	require.ErrorIs(t, err, ErrPickerCancelled)
}

func TestPickerOtherFailureIncludesStderr(t *testing.T) {
	_, err := pickerWith(t, "echo 'no display' >&2\nexit 5").Pick(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPickerCancelled)
	require.Contains(t, err.Error(), "no display")
}

func TestViewerAppendsPath(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	script := writeScript(t, "open.sh", `printf '%s\n' "$*" > "$1"`)

	cfg := config.Default()
	cfg.Opener = config.CommandConfig{Argv: []string{script, argsFile}}
	require.NoError(t, NewViewer(cfg, nil).Open(context.Background(), "/tmp/essay.pdf"))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(argsFile)
		return err == nil && string(data) == argsFile+" /tmp/essay.pdf\n"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViewerRejectsEmptyArgv(t *testing.T) {
	cfg := config.Default()
	cfg.Opener = config.CommandConfig{}
	require.Error(t, NewViewer(cfg, nil).Open(context.Background(), "/tmp/x.pdf"))
}
