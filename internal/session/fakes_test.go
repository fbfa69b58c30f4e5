package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/record"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu      sync.Mutex
	takes   []Take
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeRecorder) Record(ctx context.Context, progress func(int)) (Take, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return Take{}, ctx.Err()
		}
	}

	progress(0)
	progress(50)
	if f.err != nil {
		return Take{}, f.err
	}
	progress(100)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.takes) == 0 {
		return Take{}, nil
	}
	take := f.takes[0]
	f.takes = f.takes[1:]
	return take, nil
}

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type failingStore struct {
	record.FileStore
	err error
}

func (f failingStore) Save(catalog.Submission, record.Record) error { return f.err }

type fakeIndicator struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeIndicator) add(event string) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeIndicator) ShowRecording(context.Context)       { f.add("recording") }
func (f *fakeIndicator) ShowProgress(_ context.Context, p int) {
	if p == 100 {
		f.add("progress-100")
	}
}
func (f *fakeIndicator) ShowTranscribing(context.Context)    { f.add("transcribing") }
func (f *fakeIndicator) ShowGenerating(context.Context)      { f.add("generating") }
func (f *fakeIndicator) ShowError(_ context.Context, m string) { f.add("error:" + m) }
func (f *fakeIndicator) TakeAppended(context.Context)        { f.add("take") }
func (f *fakeIndicator) FeedbackReady(context.Context)       { f.add("feedback") }
func (f *fakeIndicator) Hide(context.Context)                { f.add("hide") }

type fakeCopier struct{ copied []string }

func (f *fakeCopier) Copy(_ context.Context, text string) error {
	f.copied = append(f.copied, text)
	return nil
}

type fakeOpener struct{ opened []string }

func (f *fakeOpener) Open(_ context.Context, path string) error {
	f.opened = append(f.opened, path)
	return nil
}

var errBoom = errors.New("boom")

type harness struct {
	dir       string
	ctrl      *Controller
	recorder  *fakeRecorder
	generator *fakeGenerator
	indicator *fakeIndicator
}

func testOptions() Options {
	return OptionsFromConfig(config.Default())
}

func newHarness(t *testing.T, opts Options, files ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o600))
	}

	h := &harness{
		dir:       dir,
		recorder:  &fakeRecorder{},
		generator: &fakeGenerator{reply: "Well argued."},
		indicator: &fakeIndicator{},
	}
	h.ctrl = NewController(nil, opts, Deps{
		Recorder:  h.recorder,
		Generator: h.generator,
		Indicator: h.indicator,
	})
	return h
}

func (h *harness) open(t *testing.T) Snapshot {
	t.Helper()
	snap, err := h.ctrl.Open(h.dir)
	require.NoError(t, err)
	return snap
}

func (h *harness) sub(name string) catalog.Submission {
	return catalog.Submission{Path: filepath.Join(h.dir, name), Name: name, Ext: filepath.Ext(name)[1:]}
}
