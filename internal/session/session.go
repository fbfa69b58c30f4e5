// Package session owns one review session: the folder catalog, the active
// submission's workflow state, and the handlers that drive it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/feedback"
	"github.com/rbright/marker/internal/fsm"
	"github.com/rbright/marker/internal/record"
)

var (
	// ErrBusy reports a request that arrived while another handler was running.
	ErrBusy = errors.New("another action is in progress")
	// ErrNoSession reports a request before any folder was opened.
	ErrNoSession = errors.New("no folder is open")
	// ErrEmptyTranscript reports a generate request with nothing recorded yet.
	ErrEmptyTranscript = errors.New("no commentary recorded yet; record before generating")
	// ErrUnsavedChanges reports navigation refused by the block policy.
	ErrUnsavedChanges = errors.New("current submission has unsaved changes; save before moving")
	// ErrNoFeedback reports a copy request with no feedback text.
	ErrNoFeedback = errors.New("no feedback to copy")
)

// Take is one completed capture-and-transcribe round.
type Take struct {
	Text          string
	AudioDevice   string
	BytesCaptured int64
	Latency       time.Duration
}

// Recorder captures one fixed-length clip and transcribes it.
type Recorder interface {
	Record(ctx context.Context, progress func(percent int)) (Take, error)
}

// Store persists grading records.
type Store interface {
	Save(catalog.Submission, record.Record) error
	Load(catalog.Submission) (record.Record, bool, error)
}

// Copier places text on the clipboard.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

// Opener shows a submission in an external viewer.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Indicator is the session-facing subset of progress feedback.
type Indicator interface {
	ShowRecording(context.Context)
	ShowProgress(context.Context, int)
	ShowTranscribing(context.Context)
	ShowGenerating(context.Context)
	ShowError(context.Context, string)
	TakeAppended(context.Context)
	FeedbackReady(context.Context)
	Hide(context.Context)
}

type noopIndicator struct{}

func (noopIndicator) ShowRecording(context.Context)     {}
func (noopIndicator) ShowProgress(context.Context, int) {}
func (noopIndicator) ShowTranscribing(context.Context)  {}
func (noopIndicator) ShowGenerating(context.Context)    {}
func (noopIndicator) ShowError(context.Context, string) {}
func (noopIndicator) TakeAppended(context.Context)      {}
func (noopIndicator) FeedbackReady(context.Context)     {}
func (noopIndicator) Hide(context.Context)              {}

// Options are the workflow settings a controller runs with.
type Options struct {
	Extensions          []string
	ExcludeGraded       bool
	Navigate            string
	DefaultMark         string
	TranscriptSeparator string
	Prompt              string
	PromptSeparator     string
}

// OptionsFromConfig extracts controller options from runtime config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Extensions:          cfg.Catalog.Extensions,
		ExcludeGraded:       cfg.Catalog.ExcludeGraded,
		Navigate:            cfg.Session.Navigate,
		DefaultMark:         cfg.Session.DefaultMark,
		TranscriptSeparator: cfg.Session.TranscriptSeparator,
		Prompt:              cfg.Feedback.Prompt,
		PromptSeparator:     cfg.Feedback.PromptSeparator,
	}
}

// Deps are the collaborators a controller drives. Recorder and Generator are
// required; the rest fall back to safe defaults.
type Deps struct {
	Recorder  Recorder
	Generator feedback.Generator
	Store     Store
	Indicator Indicator
	Copier    Copier
	Opener    Opener
}

// Controller holds all state of one review session. Handlers run one at a
// time; a concurrent request is refused with ErrBusy.
type Controller struct {
	logger *slog.Logger
	opts   Options
	deps   Deps
	id     string

	busy sync.Mutex

	mu         sync.RWMutex
	catalog    *catalog.Catalog
	state      fsm.State
	transcript []string
	comment    string
	marks      record.Mark
	prompt     string
}

// NewController constructs a controller with no folder open.
func NewController(logger *slog.Logger, opts Options, deps Deps) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if deps.Store == nil {
		deps.Store = record.FileStore{}
	}
	if deps.Indicator == nil {
		deps.Indicator = noopIndicator{}
	}
	if opts.Navigate == "" {
		opts.Navigate = config.NavigateWarn
	}

	id := uuid.NewString()
	return &Controller{
		logger: logger.With("session_id", id),
		opts:   opts,
		deps:   deps,
		id:     id,
		state:  fsm.StateUnreviewed,
		prompt: opts.Prompt,
	}
}

// ID is the unique identifier of this session.
func (c *Controller) ID() string {
	return c.id
}

// acquire marks the controller busy for the duration of one handler.
func (c *Controller) acquire() (func(), error) {
	if !c.busy.TryLock() {
		return nil, ErrBusy
	}
	return c.busy.Unlock, nil
}
