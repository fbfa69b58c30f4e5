package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/marker/internal/asr"
	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/config"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	text  string
	err   error
	clips []audio.Clip
}

func (f *fakeTranscriber) Transcribe(_ context.Context, clip audio.Clip) (string, error) {
	f.clips = append(f.clips, clip)
	return f.text, f.err
}

func newTestRecorder(cfg config.Config, tr *fakeTranscriber, recordErr error) *Recorder {
	r := NewRecorder(cfg, tr, nil)
	r.selectDevice = func(context.Context, string, string) (audio.Selection, error) {
		return audio.Selection{Device: audio.Device{ID: "alsa_input.usb", Description: "USB Mic"}}, nil
	}
	r.record = func(_ context.Context, device audio.Device, opts audio.RecordOptions, progress audio.Progress) (audio.Clip, error) {
		if recordErr != nil {
			return audio.Clip{}, recordErr
		}
		progress(100)
		return audio.Clip{PCM: make([]byte, opts.Samples()*2), SampleRate: opts.SampleRate, Channels: 1, Device: device}, nil
	}
	return r
}

func TestRecordTranscribesCompletedClip(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.SampleRate = 8000
	cfg.Audio.DurationSeconds = 1
	tr := &fakeTranscriber{text: "solid argument"}
	r := newTestRecorder(cfg, tr, nil)

	var seen []int
	take, err := r.Record(context.Background(), func(p int) { seen = append(seen, p) })
	require.NoError(t, err)
	require.Equal(t, "solid argument", take.Text)
	require.Equal(t, "USB Mic (alsa_input.usb)", take.AudioDevice)
	require.Equal(t, int64(16000), take.BytesCaptured)
	require.Equal(t, []int{100}, seen)
	require.Len(t, tr.clips, 1)
	require.Equal(t, 8000, tr.clips[0].SampleRate)
}

func TestRecordCaptureFailureSkipsTranscription(t *testing.T) {
	tr := &fakeTranscriber{}
	r := newTestRecorder(config.Default(), tr, audio.ErrDeviceUnavailable)

	_, err := r.Record(context.Background(), func(int) {})
	require.ErrorIs(t, err, audio.ErrDeviceUnavailable)
	require.Empty(t, tr.clips)
}

func TestRecordSelectionFailure(t *testing.T) {
	r := newTestRecorder(config.Default(), &fakeTranscriber{}, nil)
	r.selectDevice = func(context.Context, string, string) (audio.Selection, error) {
		return audio.Selection{}, audio.ErrDeviceUnavailable
	}
	_, err := r.Record(context.Background(), func(int) {})
	require.ErrorIs(t, err, audio.ErrDeviceUnavailable)
}

func TestRecordTranscriptionFailureKeepsTakeMetadata(t *testing.T) {
	tr := &fakeTranscriber{err: asr.ErrUnintelligibleAudio}
	r := newTestRecorder(config.Default(), tr, nil)

	take, err := r.Record(context.Background(), func(int) {})
	require.ErrorIs(t, err, asr.ErrUnintelligibleAudio)
	require.Empty(t, take.Text)
	require.NotZero(t, take.BytesCaptured)
}

func TestRecordWritesDebugAudioWhenEnabled(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	cfg := config.Default()
	cfg.Audio.SampleRate = 8000
	cfg.Audio.DurationSeconds = 1
	cfg.Debug.EnableAudioDump = true
	_, err := newTestRecorder(cfg, &fakeTranscriber{text: "x"}, nil).Record(context.Background(), func(int) {})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(state, "marker", "debug", "take-*.wav"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.Equal(t, "RIFF", string(data[:4]))
	require.Len(t, data, 44+16000)
}

func TestRecordSkipsDebugAudioWhenDisabled(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	_, err := newTestRecorder(config.Default(), &fakeTranscriber{text: "x"}, nil).Record(context.Background(), func(int) {})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(state, "marker", "debug"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDescribeDevice(t *testing.T) {
	require.Equal(t, "Mic (id-1)", describeDevice(audio.Device{ID: "id-1", Description: "Mic"}))
	require.Equal(t, "id-1", describeDevice(audio.Device{ID: "id-1"}))
	require.Equal(t, "Mic", describeDevice(audio.Device{Description: "Mic"}))
}
