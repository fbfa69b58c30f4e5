package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/feedback"
	"github.com/rbright/marker/internal/fsm"
	"github.com/rbright/marker/internal/record"
)

// Open scans dir and makes its first submission active.
func (c *Controller) Open(dir string) (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	cat, err := catalog.Scan(dir, c.opts.Extensions, c.opts.ExcludeGraded)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = cat
	warnings := c.arriveLocked()
	if cat.Len() == 0 {
		warnings = append(warnings, fmt.Sprintf("no submissions to review in %s", cat.Dir))
	}
	c.logger.Info("folder opened", "dir", cat.Dir, "submissions", cat.Len())
	return c.snapshotLocked(warnings...), nil
}

// Rescan rebuilds the catalog, keeping the active submission and its
// in-memory work when it is still present.
func (c *Controller) Rescan() (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil {
		return c.snapshotLocked(), ErrNoSession
	}

	previous, hadCurrent := c.currentLocked()
	cat, err := catalog.Scan(c.catalog.Dir, c.opts.Extensions, c.opts.ExcludeGraded)
	if err != nil {
		return c.snapshotLocked(), err
	}
	// the active submission may have been filtered out by its own sidecar
	if hadCurrent && !cat.Seek(previous.Path) && fsm.Unsaved(c.state) {
		return c.snapshotLocked(), fmt.Errorf("%w: %s is no longer in the catalog", ErrUnsavedChanges, previous.Name)
	}

	c.catalog = cat
	var warnings []string
	if current, ok := c.currentLocked(); !ok || !hadCurrent || current.Path != previous.Path {
		warnings = c.arriveLocked()
	}
	warnings = append(warnings, fmt.Sprintf("%d submissions", cat.Len()))
	return c.snapshotLocked(warnings...), nil
}

// Record captures one spoken take and appends its text to the transcript.
// On any failure the previous state and transcript are kept.
func (c *Controller) Record(ctx context.Context) (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.Lock()
	sub, err := c.requireSubmissionLocked()
	if err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	prior := c.state
	next, err := fsm.Transition(prior, fsm.EventRecord)
	if err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	c.state = next
	c.mu.Unlock()

	c.deps.Indicator.ShowRecording(ctx)
	take, err := c.deps.Recorder.Record(ctx, func(percent int) {
		c.deps.Indicator.ShowProgress(ctx, percent)
		if percent >= 100 {
			c.deps.Indicator.ShowTranscribing(ctx)
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = prior
		c.deps.Indicator.ShowError(ctx, "Recording failed")
		c.logger.Error("record failed", "submission", sub.Name, "error", err.Error())
		return c.snapshotLocked(), err
	}

	text := strings.TrimSpace(take.Text)
	c.logger.Info("take transcribed",
		"submission", sub.Name,
		"audio_device", take.AudioDevice,
		"audio_bytes", take.BytesCaptured,
		"latency_ms", take.Latency.Milliseconds(),
		"chars", len(text),
	)
	if text == "" {
		c.state = prior
		c.deps.Indicator.ShowError(ctx, "No speech detected")
		return c.snapshotLocked("no speech recognized; transcript unchanged"), nil
	}

	c.transcript = append(c.transcript, text)
	c.state, _ = fsm.Transition(fsm.StateRecording, fsm.EventCaptured)
	c.deps.Indicator.TakeAppended(ctx)
	return c.snapshotLocked(), nil
}

// Generate asks the feedback service to turn the transcript into feedback.
// The current feedback is replaced only on success.
func (c *Controller) Generate(ctx context.Context) (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.RLock()
	sub, err := c.requireSubmissionLocked()
	if err != nil {
		c.mu.RUnlock()
		return c.Snapshot(), err
	}
	if len(c.transcript) == 0 {
		c.mu.RUnlock()
		return c.Snapshot(), ErrEmptyTranscript
	}
	next, err := fsm.Transition(c.state, fsm.EventGenerate)
	if err != nil {
		c.mu.RUnlock()
		return c.Snapshot(), err
	}
	transcript := strings.Join(c.transcript, c.opts.TranscriptSeparator)
	prompt := feedback.Compose(c.prompt, transcript, c.opts.PromptSeparator)
	c.mu.RUnlock()

	c.deps.Indicator.ShowGenerating(ctx)
	started := time.Now()
	text, err := c.deps.Generator.Generate(ctx, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.deps.Indicator.ShowError(ctx, "Feedback generation failed")
		c.logger.Error("generate failed", "submission", sub.Name, "error", err.Error())
		return c.snapshotLocked(), err
	}

	c.comment = text
	c.state = next
	c.logger.Info("feedback generated", "submission", sub.Name, "chars", len(text), "latency_ms", time.Since(started).Milliseconds())
	c.deps.Indicator.FeedbackReady(ctx)
	return c.snapshotLocked(), nil
}

// SetMarks replaces the three marks fields.
func (c *Controller) SetMarks(code string, text string, total string) (Snapshot, error) {
	return c.edit(func() {
		c.marks = record.Mark{Code: code, Text: text, Total: total}
	})
}

// SetComment replaces the feedback text with a manual edit.
func (c *Controller) SetComment(text string) (Snapshot, error) {
	return c.edit(func() {
		c.comment = text
	})
}

func (c *Controller) edit(apply func()) (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.requireSubmissionLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	next, err := fsm.Transition(c.state, fsm.EventEdit)
	if err != nil {
		return c.snapshotLocked(), err
	}
	apply()
	c.state = next
	return c.snapshotLocked(), nil
}

// SetPrompt overrides the prompt template for the rest of the session.
func (c *Controller) SetPrompt(text string) (Snapshot, error) {
	return c.setPrompt(text)
}

// ResetPrompt restores the configured prompt template.
func (c *Controller) ResetPrompt() (Snapshot, error) {
	return c.setPrompt(c.opts.Prompt)
}

func (c *Controller) setPrompt(text string) (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = text
	var warnings []string
	if strings.TrimSpace(text) == "" {
		warnings = append(warnings, "prompt is empty; only the transcript will be sent")
	}
	return c.snapshotLocked(warnings...), nil
}

// Save writes the marks and feedback to the active submission's sidecar.
func (c *Controller) Save() (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.saveLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) saveLocked() error {
	sub, err := c.requireSubmissionLocked()
	if err != nil {
		return err
	}
	next, err := fsm.Transition(c.state, fsm.EventSave)
	if err != nil {
		return err
	}
	if err := c.deps.Store.Save(sub, c.recordLocked()); err != nil {
		c.logger.Error("save failed", "submission", sub.Name, "error", err.Error())
		return err
	}
	c.state = next
	c.logger.Info("record saved", "submission", sub.Name, "path", sub.SidecarPath())
	return nil
}

// Advance moves delta submissions, applying the navigation policy to
// unsaved work. At a catalog boundary it is a no-op.
func (c *Controller) Advance(delta int) (Snapshot, error) {
	release, err := c.acquire()
	if err != nil {
		return c.Snapshot(), err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	sub, err := c.requireSubmissionLocked()
	if err != nil {
		return c.snapshotLocked(), err
	}
	if _, moved := c.catalog.Peek(delta); !moved {
		edge := "last"
		if delta < 0 {
			edge = "first"
		}
		return c.snapshotLocked(fmt.Sprintf("already at the %s submission", edge)), nil
	}

	var warnings []string
	if fsm.Unsaved(c.state) {
		switch c.opts.Navigate {
		case config.NavigateBlock:
			return c.snapshotLocked(), ErrUnsavedChanges
		case config.NavigateSave:
			if c.recordLocked().Pristine(c.opts.DefaultMark) {
				warnings = append(warnings, fmt.Sprintf("%s had no marks or feedback; nothing saved", sub.Name))
				break
			}
			if err := c.saveLocked(); err != nil {
				return c.snapshotLocked(), fmt.Errorf("auto-save %s: %w", sub.Name, err)
			}
			warnings = append(warnings, fmt.Sprintf("saved %s", sub.Name))
		default:
			warnings = append(warnings, fmt.Sprintf("left %s with unsaved changes", sub.Name))
		}
	}

	c.catalog.Advance(delta)
	warnings = append(warnings, c.arriveLocked()...)
	return c.snapshotLocked(warnings...), nil
}

// Copy places the current feedback on the clipboard.
func (c *Controller) Copy(ctx context.Context) (Snapshot, error) {
	c.mu.RLock()
	comment := c.comment
	c.mu.RUnlock()

	if strings.TrimSpace(comment) == "" {
		return c.Snapshot(), ErrNoFeedback
	}
	if c.deps.Copier == nil {
		return c.Snapshot(), errors.New("clipboard is not configured")
	}
	if err := c.deps.Copier.Copy(ctx, comment); err != nil {
		return c.Snapshot(), fmt.Errorf("copy feedback: %w", err)
	}
	return c.Snapshot(), nil
}

// OpenCurrent shows the active submission in the configured viewer.
func (c *Controller) OpenCurrent(ctx context.Context) (Snapshot, error) {
	c.mu.RLock()
	sub, err := c.requireSubmissionLocked()
	c.mu.RUnlock()
	if err != nil {
		return c.Snapshot(), err
	}
	if c.deps.Opener == nil {
		return c.Snapshot(), errors.New("viewer is not configured")
	}
	if err := c.deps.Opener.Open(ctx, sub.Path); err != nil {
		return c.Snapshot(), fmt.Errorf("open %s: %w", sub.Name, err)
	}
	return c.Snapshot(), nil
}

// arriveLocked resets per-submission state and pre-populates it from an
// existing sidecar.
func (c *Controller) arriveLocked() []string {
	c.state = fsm.StateUnreviewed
	c.transcript = nil
	c.comment = ""
	c.marks = record.Mark{Code: c.opts.DefaultMark, Text: c.opts.DefaultMark, Total: c.opts.DefaultMark}

	sub, ok := c.currentLocked()
	if !ok {
		return nil
	}
	rec, exists, err := c.deps.Store.Load(sub)
	switch {
	case errors.Is(err, record.ErrCorruptRecord):
		c.logger.Warn("corrupt record", "submission", sub.Name, "error", err.Error())
		return []string{fmt.Sprintf("existing record for %s is unreadable and will be replaced on save", sub.Name)}
	case err != nil:
		return []string{fmt.Sprintf("could not read record for %s: %v", sub.Name, err)}
	case exists:
		c.marks = rec.Mark
		c.comment = rec.Comment
		c.state = fsm.StateSaved
	}
	return nil
}

func (c *Controller) currentLocked() (catalog.Submission, bool) {
	if c.catalog == nil {
		return catalog.Submission{}, false
	}
	sub, err := c.catalog.Current()
	return sub, err == nil
}

func (c *Controller) requireSubmissionLocked() (catalog.Submission, error) {
	if c.catalog == nil {
		return catalog.Submission{}, ErrNoSession
	}
	return c.catalog.Current()
}

func (c *Controller) recordLocked() record.Record {
	return record.Record{Mark: c.marks, Comment: c.comment}
}
