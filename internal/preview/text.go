package preview

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx/packager"
	"github.com/gomutex/godocx/wml/ctypes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLText returns the visible text of an HTML document with whitespace
// collapsed. Script, style, and head content is skipped.
func HTMLText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var words []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return strings.Join(words, " "), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			if hidden(z) {
				skip++
			}
		case html.EndTagToken:
			if hidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words = append(words, strings.Fields(string(z.Text()))...)
			}
		}
	}
}

func hidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Head, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// DOCXText returns the run text of a DOCX document body, one paragraph per
// line. Paragraphs inside tables are included in reading order.
func DOCXText(data []byte) (string, error) {
	root, err := packager.Unpack(&data)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	if root.Document == nil || root.Document.Body == nil {
		return "", errors.New("docx has no document body")
	}

	var lines []string
	for _, child := range root.Document.Body.Children {
		switch {
		case child.Para != nil:
			lines = appendParagraph(lines, child.Para.GetCT())
		case child.Table != nil:
			lines = appendTable(lines, child.Table.GetCT())
		}
	}
	return strings.Join(lines, "\n"), nil
}

func appendParagraph(lines []string, p *ctypes.Paragraph) []string {
	if p == nil {
		return lines
	}
	var b strings.Builder
	writeParagraphChildren(&b, p.Children)
	if line := strings.TrimSpace(b.String()); line != "" {
		lines = append(lines, line)
	}
	return lines
}

func writeParagraphChildren(b *strings.Builder, children []ctypes.ParagraphChild) {
	for _, child := range children {
		if child.Run != nil {
			writeRun(b, child.Run)
		}
		if child.Link != nil {
			if child.Link.Run != nil {
				writeRun(b, child.Link.Run)
			}
			writeParagraphChildren(b, child.Link.Children)
		}
	}
}

func writeRun(b *strings.Builder, run *ctypes.Run) {
	for _, rc := range run.Children {
		switch {
		case rc.Text != nil:
			b.WriteString(rc.Text.Text)
		case rc.Break != nil:
			b.WriteByte(' ')
		}
	}
}

func appendTable(lines []string, t *ctypes.Table) []string {
	if t == nil {
		return lines
	}
	for _, rowContent := range t.RowContents {
		if rowContent.Row == nil {
			continue
		}
		for _, cellContent := range rowContent.Row.Contents {
			if cellContent.Cell == nil {
				continue
			}
			for _, block := range cellContent.Cell.Contents {
				lines = appendParagraph(lines, block.Paragraph)
				lines = appendTable(lines, block.Table)
			}
		}
	}
	return lines
}
