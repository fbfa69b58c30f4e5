package session

import (
	"fmt"
	"strings"
)

// Render formats a snapshot for a terminal.
func Render(s Snapshot) string {
	var b strings.Builder
	if !s.HasSubmission {
		if s.Dir == "" {
			b.WriteString("no folder open\n")
		} else {
			fmt.Fprintf(&b, "%s: no submissions\n", s.Dir)
		}
		return b.String()
	}

	marker := ""
	if s.Unsaved() {
		marker = " *"
	}
	fmt.Fprintf(&b, "[%d/%d] %s (%s)  %s%s\n", s.Index+1, s.Total, s.Submission.Name, s.Submission.Ext, s.State, marker)
	fmt.Fprintf(&b, "marks: code=%s text=%s total=%s\n", s.Marks.Code, s.Marks.Text, s.Marks.Total)

	if len(s.Transcript) > 0 {
		b.WriteString("transcript:\n")
		for i, segment := range s.Transcript {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, segment)
		}
	}
	if s.Comment != "" {
		b.WriteString("feedback:\n")
		for _, line := range strings.Split(strings.TrimRight(s.Comment, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	if s.PromptOverridden {
		fmt.Fprintf(&b, "prompt (session): %s\n", s.Prompt)
	}
	return b.String()
}
