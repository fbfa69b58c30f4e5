package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomutex/godocx"
	"github.com/rbright/marker/internal/catalog"
	"github.com/stretchr/testify/require"
)

func writeSubmission(t *testing.T, name string, data []byte) catalog.Submission {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return catalog.Submission{Path: path, Name: name, Ext: strings.TrimPrefix(filepath.Ext(name), ".")}
}

func TestHTMLTextSkipsHiddenContent(t *testing.T) {
	doc := `<html><head><title>Essay</title><style>p{}</style></head>
<body><h1>On  Rivers</h1><script>alert(1)</script><p>Water   flows
downhill.</p></body></html>`
	text, err := HTMLText(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "On Rivers Water flows downhill.", text)
}

func TestDescribeHTML(t *testing.T) {
	sub := writeSubmission(t, "alice.html", []byte("<p>one two three four</p>"))
	p, err := Describe(sub, 10)
	require.NoError(t, err)
	require.Equal(t, 4, p.Words)
	require.Equal(t, "one two th…", p.Excerpt)
	require.Equal(t, int64(len("<p>one two three four</p>")), p.Size)
}

func TestDescribeDOCX(t *testing.T) {
	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	doc.AddParagraph("First paragraph")
	doc.AddParagraph("Second paragraph")
	path := filepath.Join(t.TempDir(), "bob.docx")
	require.NoError(t, doc.SaveTo(path))

	p, err := Describe(catalog.Submission{Path: path, Name: "bob.docx", Ext: "docx"}, 0)
	require.NoError(t, err)
	require.Empty(t, p.Warning)
	require.Contains(t, p.Excerpt, "First paragraph\nSecond paragraph")
}

func TestDOCXTextIncludesTableCells(t *testing.T) {
	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	doc.AddParagraph("Rubric")
	row := doc.AddTable().AddRow()
	row.AddCell().AddParagraph("Structure")
	row.AddCell().AddParagraph("Evidence")
	doc.AddParagraph("End")
	path := filepath.Join(t.TempDir(), "rubric.docx")
	require.NoError(t, doc.SaveTo(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text, err := DOCXText(data)
	require.NoError(t, err)
	require.Equal(t, "Rubric\nStructure\nEvidence\nEnd", text)
}

func TestDescribeCorruptDOCXWarns(t *testing.T) {
	sub := writeSubmission(t, "broken.docx", []byte("not a zip"))
	p, err := Describe(sub, 0)
	require.NoError(t, err)
	require.Contains(t, p.Warning, "text extraction failed")
}

func TestDescribeCorruptPDFWarns(t *testing.T) {
	sub := writeSubmission(t, "broken.pdf", []byte("%PDF-1.4 garbage"))
	p, err := Describe(sub, 0)
	require.NoError(t, err)
	require.Zero(t, p.Pages)
	require.Contains(t, p.Warning, "page count unavailable")
}

func TestDescribeMissingFile(t *testing.T) {
	_, err := Describe(catalog.Submission{Path: filepath.Join(t.TempDir(), "gone.pdf"), Ext: "pdf"}, 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRender(t *testing.T) {
	out := Render(Preview{
		Submission: catalog.Submission{Name: "a.pdf", Ext: "pdf"},
		Size:       2048,
		Pages:      3,
		Warning:    "",
	})
	require.Contains(t, out, "size:     2.0 KiB\n")
	require.Contains(t, out, "pages:    3\n")
	require.NotContains(t, out, "words:")
}

func TestHumanSize(t *testing.T) {
	require.Equal(t, "512 B", humanSize(512))
	require.Equal(t, "1.5 MiB", humanSize(1536*1024))
}
