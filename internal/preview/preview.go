// Package preview summarizes a submission for the terminal: kind, size,
// PDF page count, and a plain-text excerpt for HTML and DOCX files.
package preview

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rbright/marker/internal/catalog"
)

// DefaultExcerpt is the excerpt rune limit used by the CLI.
const DefaultExcerpt = 600

// Preview is the rendered summary of one submission.
type Preview struct {
	Submission catalog.Submission
	Size       int64
	Modified   time.Time
	Pages      int
	Words      int
	Excerpt    string
	Warning    string
}

// Describe inspects a submission. Extraction problems are reported in
// Warning; only an unreadable file is an error.
func Describe(sub catalog.Submission, maxRunes int) (Preview, error) {
	info, err := os.Stat(sub.Path)
	if err != nil {
		return Preview{}, fmt.Errorf("stat submission %q: %w", sub.Path, err)
	}
	data, err := os.ReadFile(sub.Path)
	if err != nil {
		return Preview{}, fmt.Errorf("read submission %q: %w", sub.Path, err)
	}

	p := Preview{Submission: sub, Size: info.Size(), Modified: info.ModTime()}

	var text string
	switch strings.ToLower(sub.Ext) {
	case "pdf":
		count, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			p.Warning = fmt.Sprintf("page count unavailable: %v", err)
			return p, nil
		}
		p.Pages = count
		return p, nil
	case "html", "htm":
		text, err = HTMLText(bytes.NewReader(data))
	case "docx":
		text, err = DOCXText(data)
	default:
		return p, nil
	}
	if err != nil {
		p.Warning = fmt.Sprintf("text extraction failed: %v", err)
		return p, nil
	}

	p.Words = len(strings.Fields(text))
	p.Excerpt = truncate(text, maxRunes)
	return p, nil
}

// Render formats a preview as indented key/value lines.
func Render(p Preview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "file:     %s\n", p.Submission.Name)
	fmt.Fprintf(&b, "type:     %s\n", p.Submission.Ext)
	fmt.Fprintf(&b, "size:     %s\n", humanSize(p.Size))
	fmt.Fprintf(&b, "modified: %s\n", p.Modified.Format(time.DateTime))
	if p.Pages > 0 {
		fmt.Fprintf(&b, "pages:    %d\n", p.Pages)
	}
	if p.Words > 0 {
		fmt.Fprintf(&b, "words:    %d\n", p.Words)
	}
	if p.Warning != "" {
		fmt.Fprintf(&b, "warning:  %s\n", p.Warning)
	}
	if p.Excerpt != "" {
		b.WriteString("\n")
		b.WriteString(p.Excerpt)
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
