package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvFilesSkipsMissingAndKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MARKER_TEST_KEY=from-file\nMARKER_TEST_SET=from-file\n"), 0o600))

	t.Setenv("MARKER_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("MARKER_TEST_KEY"))
	t.Setenv("MARKER_TEST_SET", "from-env")

	warnings := LoadEnvFiles([]string{filepath.Join(dir, "missing.env"), " ", path})
	require.Empty(t, warnings)
	require.Equal(t, "from-file", os.Getenv("MARKER_TEST_KEY"))
	require.Equal(t, "from-env", os.Getenv("MARKER_TEST_SET"))
}

func TestLoadEnvFilesWarnsOnDirectory(t *testing.T) {
	warnings := LoadEnvFiles([]string{t.TempDir()})
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "env file")
}

func TestCredential(t *testing.T) {
	t.Setenv("MARKER_TEST_CRED", "  secret  ")
	value, ok := Credential("MARKER_TEST_CRED")
	require.True(t, ok)
	require.Equal(t, "secret", value)

	t.Setenv("MARKER_TEST_CRED", " ")
	_, ok = Credential("MARKER_TEST_CRED")
	require.False(t, ok)

	_, ok = Credential("")
	require.False(t, ok)
}
