package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/marker/internal/catalog"
	"github.com/stretchr/testify/require"
)

func submission(t *testing.T) catalog.Submission {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "alice.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0o600))
	return catalog.Submission{Path: path, Name: "alice.html", Ext: "html"}
}

func TestSaveWritesIndentedSidecar(t *testing.T) {
	sub := submission(t)
	rec := Record{Mark: Mark{Code: "7", Text: "8", Total: "15"}, Comment: "Nice work."}

	require.NoError(t, Save(sub, rec))

	data, err := os.ReadFile(sub.SidecarPath())
	require.NoError(t, err)
	require.Equal(t, `{
    "mark": {
        "code": "7",
        "text": "8",
        "total": "15"
    },
    "comment": "Nice work."
}`, string(data))

	loaded, ok, err := Load(sub)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, loaded)
}

func TestSaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	sub := submission(t)
	require.NoError(t, Save(sub, Record{Mark: Mark{Code: "1", Text: "1", Total: "2"}, Comment: "first"}))
	require.NoError(t, Save(sub, Record{Mark: Mark{Code: "0", Text: "0", Total: "0"}, Comment: "second"}))

	loaded, ok, err := Load(sub)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", loaded.Comment)

	entries, err := os.ReadDir(filepath.Dir(sub.Path))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSaveFailureKeepsPriorFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	sub := submission(t)
	require.NoError(t, Save(sub, Record{Comment: "kept"}))

	dir := filepath.Dir(sub.Path)
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	err := Save(sub, Record{Comment: "lost"})
	require.ErrorIs(t, err, ErrWriteFailure)

	loaded, ok, err := Load(sub)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kept", loaded.Comment)
}

func TestSaveIntoMissingDirectoryFails(t *testing.T) {
	sub := catalog.Submission{Path: filepath.Join(t.TempDir(), "gone", "bob.pdf"), Name: "bob.pdf", Ext: "pdf"}
	require.ErrorIs(t, Save(sub, Record{}), ErrWriteFailure)
}

func TestLoadAbsent(t *testing.T) {
	rec, ok, err := Load(submission(t))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Record{}, rec)
}

func TestLoadCorrupt(t *testing.T) {
	tests := map[string]string{
		"not json":        "{oops",
		"missing mark":    `{"comment": "x"}`,
		"missing comment": `{"mark": {"code": "1", "text": "1", "total": "2"}}`,
		"numeric mark":    `{"mark": {"code": 1, "text": "1", "total": "2"}, "comment": "x"}`,
		"missing total":   `{"mark": {"code": "1", "text": "1"}, "comment": "x"}`,
		"array":           `[]`,
		"trailing value":  `{"mark": {"code": "", "text": "", "total": ""}, "comment": ""} {}`,
		"trailing brace":  `{"mark": {"code": "1", "text": "1", "total": "1"}, "comment": ""}}`,
		"trailing square": `{"mark": {"code": "1", "text": "1", "total": "1"}, "comment": ""}]`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			sub := submission(t)
			require.NoError(t, os.WriteFile(sub.SidecarPath(), []byte(payload), 0o600))

			_, ok, err := Load(sub)
			require.True(t, ok)
			require.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	rec, err := Decode([]byte("{\"mark\": {\"code\": \"5\", \"text\": \"3\", \"total\": \"8\"}, \"comment\": \"ok\"}\n\n"))
	require.NoError(t, err)
	require.Equal(t, Record{Mark: Mark{Code: "5", Text: "3", Total: "8"}, Comment: "ok"}, rec)
}

func TestDecodeToleratesUnknownFields(t *testing.T) {
	rec, err := Decode([]byte(`{"mark": {"code": "A", "text": "B", "total": "C", "extra": 1}, "comment": "ok", "grader": "me"}`))
	require.NoError(t, err)
	require.Equal(t, Record{Mark: Mark{Code: "A", Text: "B", Total: "C"}, Comment: "ok"}, rec)
}

func TestPristine(t *testing.T) {
	require.True(t, Record{Mark: Mark{Code: "0", Text: "0", Total: "0"}}.Pristine("0"))
	require.True(t, Record{}.Pristine("0"))
	require.False(t, Record{Mark: Mark{Code: "3", Text: "0", Total: "0"}}.Pristine("0"))
	require.False(t, Record{Comment: "draft"}.Pristine("0"))
}
