package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
}

func names(c *Catalog) []string {
	out := make([]string, 0, c.Len())
	for _, item := range c.Items() {
		out = append(out, item.Name)
	}
	return out
}

func TestScanFiltersSortsAndExcludesGraded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.html", "a.HTML", "c.pdf", "notes.txt", "b.json", "d.docx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.html"), 0o700))

	c, err := Scan(dir, []string{"html", ".pdf"}, true)
	require.NoError(t, err)
	require.Equal(t, []string{"a.HTML", "c.pdf"}, names(c))
	require.Equal(t, 0, c.Index())

	all, err := Scan(dir, []string{"html", "pdf", "docx"}, false)
	require.NoError(t, err)
	require.Equal(t, []string{"a.HTML", "b.html", "c.pdf", "d.docx"}, names(all))
	require.Equal(t, "html", all.Items()[0].Ext)
}

func TestScanResolvesAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "one.html")
	t.Chdir(dir)

	c, err := Scan(".", []string{"html"}, false)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(c.Dir))

	sub, err := c.Current()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(c.Dir, "one.html"), sub.Path)
}

func TestScanRejectsInvalidDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "file.html")

	for _, path := range []string{"", filepath.Join(dir, "missing"), filepath.Join(dir, "file.html")} {
		_, err := Scan(path, []string{"html"}, true)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrInvalidDirectory), "path %q: %v", path, err)
	}
}

func TestEmptyCatalog(t *testing.T) {
	c, err := Scan(t.TempDir(), []string{"html"}, true)
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())

	_, err = c.Current()
	require.ErrorIs(t, err, ErrEmptyCatalog)
	require.False(t, c.Advance(1))
	require.False(t, c.Advance(-1))
}

func TestAdvanceClampsAtBoundaries(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "1.html", "2.html", "3.html")

	c, err := Scan(dir, []string{"html"}, true)
	require.NoError(t, err)

	require.False(t, c.Advance(-1))
	require.Equal(t, 0, c.Index())

	require.True(t, c.Advance(1))
	require.True(t, c.Advance(1))
	require.False(t, c.Advance(1))
	require.Equal(t, 2, c.Index())

	current, err := c.Current()
	require.NoError(t, err)
	require.Equal(t, "3.html", current.Name)

	require.True(t, c.Advance(-10))
	require.Equal(t, 0, c.Index())
}

func TestSidecarPathAndGraded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "essay.v2.docx")

	sub := Submission{Path: filepath.Join(dir, "essay.v2.docx"), Name: "essay.v2.docx", Ext: "docx"}
	require.Equal(t, filepath.Join(dir, "essay.v2.json"), sub.SidecarPath())
	require.False(t, sub.Graded())

	writeFiles(t, dir, "essay.v2.json")
	require.True(t, sub.Graded())
}

func TestPeekAndSeek(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "1.html", "2.html", "3.html")

	c, err := Scan(dir, []string{"html"}, true)
	require.NoError(t, err)

	next, moved := c.Peek(5)
	require.True(t, moved)
	require.Equal(t, 2, next)
	require.Equal(t, 0, c.Index())

	_, moved = c.Peek(-1)
	require.False(t, moved)

	require.True(t, c.Seek(filepath.Join(c.Dir, "2.html")))
	require.Equal(t, 1, c.Index())
	require.False(t, c.Seek(filepath.Join(c.Dir, "missing.html")))
	require.Equal(t, 1, c.Index())
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "essay.PDF", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o700))

	sub, err := Lookup(filepath.Join(dir, "essay.PDF"), []string{"pdf"})
	require.NoError(t, err)
	require.Equal(t, "essay.PDF", sub.Name)
	require.Equal(t, "pdf", sub.Ext)
	require.Equal(t, filepath.Join(dir, "essay.json"), sub.SidecarPath())

	_, err = Lookup(filepath.Join(dir, "notes.txt"), []string{"pdf"})
	require.ErrorContains(t, err, "not a supported submission type")

	_, err = Lookup(filepath.Join(dir, "folder.pdf"), []string{"pdf"})
	require.ErrorContains(t, err, "not a regular file")

	_, err = Lookup(filepath.Join(dir, "missing.pdf"), []string{"pdf"})
	require.True(t, errors.Is(err, os.ErrNotExist))
}
