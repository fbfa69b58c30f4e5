// Package export writes a DOCX grading report for a folder of submissions.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/record"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

// Entry is one graded submission in the report.
type Entry struct {
	Submission catalog.Submission
	Record     record.Record
}

// Summary describes what a report run included and skipped.
type Summary struct {
	Output   string
	Graded   int
	Ungraded int
	Corrupt  []string
}

// Collect loads every readable sidecar for the catalog, in catalog order.
// Corrupt sidecars are listed in the summary rather than failing the run.
func Collect(cat *catalog.Catalog, logger *slog.Logger) ([]Entry, Summary) {
	var entries []Entry
	var summary Summary
	for _, sub := range cat.Items() {
		rec, ok, err := record.Load(sub)
		switch {
		case errors.Is(err, record.ErrCorruptRecord):
			summary.Corrupt = append(summary.Corrupt, sub.Name)
			if logger != nil {
				logger.Warn("skipping corrupt grading record", "file", sub.Name, "error", err.Error())
			}
		case err != nil:
			summary.Corrupt = append(summary.Corrupt, sub.Name)
			if logger != nil {
				logger.Warn("skipping unreadable grading record", "file", sub.Name, "error", err.Error())
			}
		case !ok:
			summary.Ungraded++
		default:
			entries = append(entries, Entry{Submission: sub, Record: rec})
		}
	}
	summary.Graded = len(entries)
	return entries, summary
}

// DefaultOutput is the report path used when none is given. It sits next to
// the submissions folder so the report never shows up as a submission.
func DefaultOutput(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"-grading-report.docx")
}

// Write renders entries into a DOCX file at path.
func Write(path string, title string, entries []Entry) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create report document: %w", err)
	}

	addRun(doc.AddParagraph(""), title, true, 16)
	addRun(doc.AddParagraph(""), fmt.Sprintf("%d graded submission(s)", len(entries)), false, fontSize)

	for _, entry := range entries {
		doc.AddParagraph("")
		addRun(doc.AddParagraph(""), entry.Submission.Name, true, 14)

		p := doc.AddParagraph("")
		addRun(p, "Mark: ", true, fontSize)
		addRun(p, formatMark(entry.Record.Mark), false, fontSize)

		comment := strings.TrimSpace(entry.Record.Comment)
		if comment == "" {
			addRun(doc.AddParagraph(""), "(no comment)", false, fontSize)
			continue
		}
		for _, line := range strings.Split(comment, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				addRun(doc.AddParagraph(""), line, false, fontSize)
			}
		}
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save report %q: %w", path, err)
	}
	return nil
}

// Run collects the catalog's records and writes the report to output.
func Run(cat *catalog.Catalog, output string, logger *slog.Logger) (Summary, error) {
	entries, summary := Collect(cat, logger)
	if output == "" {
		output = DefaultOutput(cat.Dir)
	}
	summary.Output = output

	title := fmt.Sprintf("Grading report: %s", filepath.Base(cat.Dir))
	if err := Write(output, title, entries); err != nil {
		return summary, err
	}
	return summary, nil
}

// formatMark joins the non-empty mark parts: "A / 18 / 20".
func formatMark(mark record.Mark) string {
	code, text, total := markPart(mark.Code), markPart(mark.Text), markPart(mark.Total)
	if code == "-" && text == "-" && total == "-" {
		return "-"
	}
	return fmt.Sprintf("code %s, text %s, total %s", code, text, total)
}

func markPart(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return "-"
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
