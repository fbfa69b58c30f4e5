package session

import (
	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/fsm"
	"github.com/rbright/marker/internal/record"
)

// Snapshot is a read-only view of the session after a handler ran.
type Snapshot struct {
	SessionID        string
	Dir              string
	Index            int
	Total            int
	Submission       catalog.Submission
	HasSubmission    bool
	State            fsm.State
	Transcript       []string
	Comment          string
	Marks            record.Mark
	Prompt           string
	PromptOverridden bool
	Warnings         []string
}

// Unsaved reports whether the active submission has unpersisted work.
func (s Snapshot) Unsaved() bool {
	return fsm.Unsaved(s.State)
}

// Snapshot returns the current view without taking the busy lock, so status
// queries are answered while a recording is in progress.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked(warnings ...string) Snapshot {
	snap := Snapshot{
		SessionID:        c.id,
		State:            c.state,
		Transcript:       append([]string(nil), c.transcript...),
		Comment:          c.comment,
		Marks:            c.marks,
		Prompt:           c.prompt,
		PromptOverridden: c.prompt != c.opts.Prompt,
		Warnings:         warnings,
	}
	if c.catalog != nil {
		snap.Dir = c.catalog.Dir
		snap.Index = c.catalog.Index()
		snap.Total = c.catalog.Len()
		if sub, err := c.catalog.Current(); err == nil {
			snap.Submission = sub
			snap.HasSubmission = true
		}
	}
	return snap
}
