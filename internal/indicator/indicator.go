// Package indicator renders recording progress and plays audio cues.
package indicator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/marker/internal/config"
)

const barWidth = 30

// Notifier is the concrete session indicator. It draws to a terminal writer
// or routes through freedesktop notifications depending on config backend.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages
	out      io.Writer

	notify  func(ctx context.Context, appName string, replaceID uint32, summary string, progress int, timeoutMS int) (uint32, error)
	dismiss func(ctx context.Context, id uint32) error
	cue     func(kind cueKind, cfg config.IndicatorConfig) error

	mu                    sync.Mutex
	desktopNotificationID uint32
	lastPercent           int
	lineOpen              bool
	soundMu               sync.Mutex
}

// New creates an indicator from config. Terminal output goes to out.
func New(cfg config.IndicatorConfig, out io.Writer, logger *slog.Logger) *Notifier {
	if out == nil {
		out = io.Discard
	}
	return &Notifier{
		cfg:         cfg,
		logger:      logger,
		messages:    indicatorMessagesFromEnv(),
		out:         out,
		notify:      desktopNotify,
		dismiss:     desktopDismiss,
		cue:         emitCue,
		lastPercent: -1,
	}
}

// ShowRecording signals capture start and emits the listen cue.
func (n *Notifier) ShowRecording(ctx context.Context) {
	n.playCue(cueListen)
	if !n.cfg.Enable {
		return
	}
	n.mu.Lock()
	n.lastPercent = -1
	n.mu.Unlock()
	if n.desktop() {
		n.run(ctx, func(ctx context.Context) error {
			return n.notifyDesktop(ctx, n.messages.recording, 0, 0)
		})
		return
	}
	n.ShowProgress(ctx, 0)
}

// ShowProgress updates the capture progress surface. Repeated values are dropped.
func (n *Notifier) ShowProgress(ctx context.Context, percent int) {
	if !n.cfg.Enable {
		return
	}
	percent = clampPercent(percent)

	n.mu.Lock()
	if percent == n.lastPercent {
		n.mu.Unlock()
		return
	}
	n.lastPercent = percent
	n.mu.Unlock()

	if n.desktop() {
		// Desktop servers rate-limit; only push whole tenths.
		if percent%10 != 0 {
			return
		}
		n.run(ctx, func(ctx context.Context) error {
			return n.notifyDesktop(ctx, n.messages.recording, percent, 0)
		})
		return
	}
	n.writeLine("\r" + renderBar(n.messages.recording, percent))
}

// ShowTranscribing signals the post-capture transcription state.
func (n *Notifier) ShowTranscribing(ctx context.Context) {
	n.playCue(cueCaptured)
	n.showStatus(ctx, n.messages.transcribing)
}

// ShowGenerating signals a pending feedback request.
func (n *Notifier) ShowGenerating(ctx context.Context) {
	n.showStatus(ctx, n.messages.generating)
}

// ShowError displays an error-state message and plays the error cue.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	n.playCue(cueFault)
	if !n.cfg.Enable {
		return
	}
	if strings.TrimSpace(text) == "" {
		text = n.messages.errorText
	}
	if n.desktop() {
		timeout := n.cfg.ErrorTimeoutMS
		if timeout <= 0 {
			timeout = 1200
		}
		n.run(ctx, func(ctx context.Context) error {
			return n.notifyDesktop(ctx, text, -1, timeout)
		})
		return
	}
	n.finishLine("! " + text)
	n.Hide(ctx)
}

// TakeAppended closes the recording surface after a take joined the transcript.
func (n *Notifier) TakeAppended(ctx context.Context) {
	n.playCue(cueTake)
	n.Hide(ctx)
}

// FeedbackReady closes the generating surface after feedback arrived.
func (n *Notifier) FeedbackReady(ctx context.Context) {
	n.playCue(cueFeedback)
	n.Hide(ctx)
}

// Hide dismisses the active indicator surface.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	if n.desktop() {
		n.run(ctx, n.dismissDesktop)
		return
	}
	n.mu.Lock()
	open := n.lineOpen
	n.lineOpen = false
	n.mu.Unlock()
	if open {
		n.write("\n")
	}
}

func (n *Notifier) showStatus(ctx context.Context, text string) {
	if !n.cfg.Enable {
		return
	}
	if n.desktop() {
		n.run(ctx, func(ctx context.Context) error {
			return n.notifyDesktop(ctx, text, -1, 0)
		})
		return
	}
	n.finishLine(text)
}

func (n *Notifier) desktop() bool {
	return strings.EqualFold(strings.TrimSpace(n.cfg.Backend), "desktop")
}

// writeLine rewrites the current terminal line in place.
func (n *Notifier) writeLine(text string) {
	n.mu.Lock()
	n.lineOpen = true
	n.mu.Unlock()
	n.write(text)
}

// finishLine terminates any in-place line and prints text on its own line.
func (n *Notifier) finishLine(text string) {
	n.mu.Lock()
	open := n.lineOpen
	n.lineOpen = true
	n.mu.Unlock()
	prefix := ""
	if open {
		prefix = "\n"
	}
	n.write(prefix + text)
}

func (n *Notifier) write(text string) {
	if _, err := io.WriteString(n.out, text); err != nil {
		n.log("indicator terminal write failed", err)
	}
}

// notifyDesktop sends a replaceable desktop notification and stores its ID.
func (n *Notifier) notifyDesktop(ctx context.Context, text string, progress int, timeoutMS int) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.DesktopAppName)
	if appName == "" {
		appName = "marker"
	}

	id, err := n.notify(ctx, appName, replaceID, text, progress, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

// dismissDesktop closes the current desktop notification ID when present.
func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return n.dismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := n.cue(kind, n.cfg); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

func renderBar(label string, percent int) string {
	percent = clampPercent(percent)
	filled := percent * barWidth / 100
	return fmt.Sprintf("%s [%s%s] %3d%%", label, strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), percent)
}

func clampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
