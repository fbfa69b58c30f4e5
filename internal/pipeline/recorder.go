// Package pipeline glues audio capture to transcription for one recording take.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/marker/internal/asr"
	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/logging"
	"github.com/rbright/marker/internal/session"
)

// Recorder resolves the input device, records one fixed-length clip, and
// transcribes it. The clip is only sent once capture has fully completed.
type Recorder struct {
	cfg         config.Config
	logger      *slog.Logger
	transcriber asr.Transcriber

	selectDevice func(ctx context.Context, input string, fallback string) (audio.Selection, error)
	record       func(ctx context.Context, device audio.Device, opts audio.RecordOptions, progress audio.Progress) (audio.Clip, error)
}

// NewRecorder builds a recorder from runtime config.
func NewRecorder(cfg config.Config, transcriber asr.Transcriber, logger *slog.Logger) *Recorder {
	return &Recorder{
		cfg:          cfg,
		logger:       logger,
		transcriber:  transcriber,
		selectDevice: audio.SelectDevice,
		record:       audio.Record,
	}
}

var _ session.Recorder = (*Recorder)(nil)

// Record implements session.Recorder.
func (r *Recorder) Record(ctx context.Context, progress func(percent int)) (session.Take, error) {
	selection, err := r.selectDevice(ctx, r.cfg.Audio.Input, r.cfg.Audio.Fallback)
	if err != nil {
		return session.Take{}, err
	}
	if selection.Warning != "" {
		r.logWarn(selection.Warning)
	}
	device := describeDevice(selection.Device)

	clip, err := r.record(ctx, selection.Device, audio.RecordOptions{
		SampleRate:   r.cfg.Audio.SampleRate,
		Duration:     r.cfg.Audio.Duration(),
		PollInterval: r.cfg.Audio.ProgressInterval(),
	}, progress)
	if err != nil {
		return session.Take{AudioDevice: device}, fmt.Errorf("record from %s: %w", device, err)
	}
	r.writeDebugAudio(clip)

	take := session.Take{AudioDevice: device, BytesCaptured: int64(len(clip.PCM))}
	started := time.Now()
	text, err := r.transcriber.Transcribe(ctx, clip)
	take.Latency = time.Since(started)
	if err != nil {
		return take, fmt.Errorf("transcribe: %w", err)
	}
	take.Text = text
	return take, nil
}

// describeDevice formats device metadata for logs and takes.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func (r *Recorder) logWarn(message string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(message, args...)
}

// writeDebugAudio stores the clip as WAV when debug.audio_dump is enabled.
func (r *Recorder) writeDebugAudio(clip audio.Clip) {
	if !r.cfg.Debug.EnableAudioDump || len(clip.PCM) == 0 {
		return
	}

	file, err := createDebugFile("take", "wav")
	if err != nil {
		r.logWarn("unable to create debug audio dump", "error", err.Error())
		return
	}
	defer file.Close()

	if err := audio.EncodeWAV(file, clip.PCM, clip.SampleRate, clip.Channels); err != nil {
		r.logWarn("unable to write debug audio dump", "error", err.Error())
		return
	}
	if r.logger != nil {
		r.logger.Debug("debug audio written", "path", file.Name())
	}
}

// createDebugFile creates a timestamped debug artifact under the state dir.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := logging.StateDir()
	if err != nil {
		return nil, err
	}
	debugDir := filepath.Join(stateDir, "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}
