package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/preview"
	"github.com/rbright/marker/internal/record"
	"github.com/stretchr/testify/require"
)

func scanFolder(t *testing.T, files ...string) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<p>x</p>"), 0o644))
	}
	cat, err := catalog.Scan(dir, []string{"html"}, false)
	require.NoError(t, err)
	return cat
}

func TestCollectClassifiesSidecars(t *testing.T) {
	cat := scanFolder(t, "a.html", "b.html", "c.html")
	items := cat.Items()
	require.NoError(t, record.Save(items[0], record.Record{Mark: record.Mark{Code: "A", Text: "18", Total: "20"}, Comment: "Good"}))
	require.NoError(t, os.WriteFile(items[2].SidecarPath(), []byte("{"), 0o644))

	entries, summary := Collect(cat, nil)
	require.Len(t, entries, 1)
	require.Equal(t, "a.html", entries[0].Submission.Name)
	require.Equal(t, 1, summary.Graded)
	require.Equal(t, 1, summary.Ungraded)
	require.Equal(t, []string{"c.html"}, summary.Corrupt)
}

func TestRunWritesReadableReport(t *testing.T) {
	cat := scanFolder(t, "alice.html", "bob.html")
	items := cat.Items()
	require.NoError(t, record.Save(items[0], record.Record{Mark: record.Mark{Code: "B", Total: "20"}, Comment: "Clear thesis.\nCite sources."}))
	require.NoError(t, record.Save(items[1], record.Record{Mark: record.Mark{Code: "0"}}))

	output := filepath.Join(t.TempDir(), "report.docx")
	summary, err := Run(cat, output, nil)
	require.NoError(t, err)
	require.Equal(t, output, summary.Output)
	require.Equal(t, 2, summary.Graded)

	data, err := os.ReadFile(summary.Output)
	require.NoError(t, err)
	text, err := preview.DOCXText(data)
	require.NoError(t, err)
	require.Contains(t, text, "Grading report: "+filepath.Base(cat.Dir))
	require.Contains(t, text, "alice.html")
	require.Contains(t, text, "Mark: code B, text -, total 20")
	require.Contains(t, text, "Clear thesis.\nCite sources.")
	require.Contains(t, text, "(no comment)")
}

func TestRunFailsOnUnwritableOutput(t *testing.T) {
	cat := scanFolder(t, "a.html")
	_, err := Run(cat, filepath.Join(t.TempDir(), "missing", "report.docx"), nil)
	require.ErrorContains(t, err, "save report")
}

func TestFormatMark(t *testing.T) {
	require.Equal(t, "code A, text 18, total 20", formatMark(record.Mark{Code: "A", Text: "18", Total: "20"}))
	require.Equal(t, "code -, text 18, total -", formatMark(record.Mark{Text: " 18 "}))
	require.Equal(t, "code 5, text -, total 8", formatMark(record.Mark{Code: "5", Total: "8"}))
	require.Equal(t, "-", formatMark(record.Mark{}))
}

func TestDefaultOutputSitsBesideFolder(t *testing.T) {
	require.Equal(t, "/srv/grading/essays-grading-report.docx", DefaultOutput("/srv/grading/essays/"))
}
