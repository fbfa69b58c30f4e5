package indicator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbright/marker/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEveryCueRenders(t *testing.T) {
	for _, kind := range []cueKind{cueListen, cueCaptured, cueTake, cueFeedback, cueFault} {
		require.NotEmpty(t, renderCue(cueTable[kind].notes), "cue %d", kind)
	}
	_, ok := cueTable[cueKind(99)]
	require.False(t, ok)
}

func TestTakeAndFeedbackCuesDiffer(t *testing.T) {
	take := renderCue(cueTable[cueTake].notes)
	fb := renderCue(cueTable[cueFeedback].notes)
	require.NotEqual(t, len(take), len(fb))
}

func TestRenderNoteLengthAndFade(t *testing.T) {
	got := renderNote(note{fromHz: 440, toHz: 880, length: 100 * time.Millisecond, gain: 0.2})
	require.Len(t, got, sampleCount(100*time.Millisecond))
	require.Zero(t, got[0])
	require.LessOrEqual(t, absSample(got[len(got)-1]), int16(200))

	var peak int16
	for _, s := range got {
		peak = max(peak, absSample(s))
	}
	require.InDelta(t, 0.2*32767, float64(peak), 0.01*32767)
}

func TestRenderNoteInvalidIsSilent(t *testing.T) {
	require.Empty(t, renderNote(note{fromHz: 0, toHz: 440, length: 50 * time.Millisecond, gain: 0.2}))
	require.Empty(t, renderNote(note{fromHz: 440, toHz: 440, length: 0, gain: 0.2}))
	require.Empty(t, renderNote(note{fromHz: 440, toHz: 440, length: 50 * time.Millisecond, gain: 0}))
}

func TestRenderCueInsertsGaps(t *testing.T) {
	n := note{fromHz: 440, toHz: 440, length: 40 * time.Millisecond, gain: 0.2}
	got := renderCue([]note{n, n, n})
	require.Len(t, got, 3*sampleCount(40*time.Millisecond)+2*sampleCount(cueNoteGap))
}

func TestSampleCount(t *testing.T) {
	require.Zero(t, sampleCount(0))
	require.Zero(t, sampleCount(-time.Second))
	require.Equal(t, 2205, sampleCount(100*time.Millisecond))
}

func TestCueFileOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.IndicatorConfig{
		SoundRecordFile:   "~/cues/listen.wav",
		SoundCapturedFile: "/tmp/captured.wav",
		SoundFeedbackFile: "",
	}
	require.Equal(t, filepath.Join(home, "cues", "listen.wav"), cueFile(cueListen, cfg))
	require.Equal(t, "/tmp/captured.wav", cueFile(cueCaptured, cfg))
	require.Empty(t, cueFile(cueFeedback, cfg))
	require.Empty(t, cueFile(cueFault, cfg))
	require.Empty(t, cueFile(cueKind(99), cfg))
}

func TestPlayCueFileMissing(t *testing.T) {
	err := playCueFile(filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPlayCueFileUsesFirstAvailablePlayer(t *testing.T) {
	bin := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "args.log")
	script := "#!/bin/sh\necho \"$@\" > " + logPath + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "paplay"), []byte(script), 0o755))
	t.Setenv("PATH", bin)

	cue := filepath.Join(t.TempDir(), "done.wav")
	require.NoError(t, os.WriteFile(cue, []byte("RIFF"), 0o600))

	require.NoError(t, playCueFile(cue))
	got, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Equal(t, cue+"\n", string(got))
}

func TestPlayCueFileWithoutPlayer(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cue := filepath.Join(t.TempDir(), "done.wav")
	require.NoError(t, os.WriteFile(cue, []byte("RIFF"), 0o600))
	require.ErrorIs(t, playCueFile(cue), errNoFilePlayer)
}

func absSample(s int16) int16 {
	if s < 0 {
		return -s
	}
	return s
}
