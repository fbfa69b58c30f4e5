package indicator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/rbright/marker/internal/config"
)

// cueKind names a workflow moment that has its own sound.
type cueKind int

const (
	cueListen   cueKind = iota + 1 // microphone opened
	cueCaptured                    // clip complete, transcription pending
	cueTake                        // transcript grew by one take
	cueFeedback                    // generated feedback replaced the comment
	cueFault
)

const (
	cueSampleRate = 22050
	cueNoteGap    = 18 * time.Millisecond
	cueFade       = 4 * time.Millisecond
)

// note is one tone of a cue. Pitch glides linearly from fromHz to toHz.
type note struct {
	fromHz float64
	toHz   float64
	length time.Duration
	gain   float64
}

type cueSound struct {
	notes    []note
	override func(config.IndicatorConfig) string
}

// cueTable maps each workflow moment to its synthesized notes and the config
// field that may replace them with a sound file. Rising shapes mark progress,
// falling shapes mark an ending or a fault.
var cueTable = map[cueKind]cueSound{
	cueListen: {
		notes:    []note{{fromHz: 660, toHz: 990, length: 110 * time.Millisecond, gain: 0.16}},
		override: func(c config.IndicatorConfig) string { return c.SoundRecordFile },
	},
	cueCaptured: {
		notes:    []note{{fromHz: 880, toHz: 660, length: 90 * time.Millisecond, gain: 0.16}},
		override: func(c config.IndicatorConfig) string { return c.SoundCapturedFile },
	},
	cueTake: {
		notes: []note{
			{fromHz: 784, toHz: 784, length: 55 * time.Millisecond, gain: 0.15},
			{fromHz: 1047, toHz: 1047, length: 70 * time.Millisecond, gain: 0.15},
		},
		override: func(c config.IndicatorConfig) string { return c.SoundTakeFile },
	},
	cueFeedback: {
		notes: []note{
			{fromHz: 523, toHz: 523, length: 60 * time.Millisecond, gain: 0.15},
			{fromHz: 659, toHz: 659, length: 60 * time.Millisecond, gain: 0.15},
			{fromHz: 784, toHz: 784, length: 120 * time.Millisecond, gain: 0.15},
		},
		override: func(c config.IndicatorConfig) string { return c.SoundFeedbackFile },
	},
	cueFault: {
		notes: []note{
			{fromHz: 440, toHz: 392, length: 90 * time.Millisecond, gain: 0.17},
			{fromHz: 349, toHz: 294, length: 140 * time.Millisecond, gain: 0.17},
		},
	},
}

// filePlayers are tried in order for configured cue files.
var filePlayers = [][]string{
	{"pw-play", "--media-role", "Notification"},
	{"paplay"},
}

var errNoFilePlayer = errors.New("no cue file player found")

// emitCue plays the configured file for kind when one is set and playable,
// otherwise the synthesized notes.
func emitCue(kind cueKind, cfg config.IndicatorConfig) error {
	sound, ok := cueTable[kind]
	if !ok {
		return nil
	}
	if path := cueFile(kind, cfg); path != "" {
		if err := playCueFile(path); err == nil {
			return nil
		}
	}
	return playPCM(renderCue(sound.notes))
}

func cueFile(kind cueKind, cfg config.IndicatorConfig) string {
	sound, ok := cueTable[kind]
	if !ok || sound.override == nil {
		return ""
	}
	return config.ExpandUserPath(sound.override(cfg))
}

func playCueFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat cue file %q: %w", path, err)
	}
	for _, player := range filePlayers {
		bin, err := exec.LookPath(player[0])
		if err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		args := append(append([]string(nil), player[1:]...), path)
		err = exec.CommandContext(ctx, bin, args...).Run()
		cancel()
		if err != nil {
			return fmt.Errorf("play cue file %q with %s: %w", path, player[0], err)
		}
		return nil
	}
	return errNoFilePlayer
}

func playPCM(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("marker"),
		pulse.ClientApplicationIconName("accessories-text-editor"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	remaining := samples
	source := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := copy(buf, remaining)
		remaining = remaining[n:]
		if len(remaining) == 0 {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(source,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.03),
		pulse.PlaybackMediaName("marker cue"),
	)
	if err != nil {
		return fmt.Errorf("open pulse playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	return stream.Error()
}

// renderCue lays the notes out back to back with a short silence between them.
func renderCue(notes []note) []int16 {
	gap := sampleCount(cueNoteGap)
	var pcm []int16
	for i, n := range notes {
		if i > 0 {
			pcm = append(pcm, make([]int16, gap)...)
		}
		pcm = append(pcm, renderNote(n)...)
	}
	return pcm
}

// renderNote synthesizes a sine glide with a raised-cosine fade at both ends.
func renderNote(n note) []int16 {
	total := sampleCount(n.length)
	if total == 0 || n.fromHz <= 0 || n.toHz <= 0 || n.gain <= 0 {
		return nil
	}
	fade := min(sampleCount(cueFade), total/2)

	pcm := make([]int16, total)
	phase := 0.0
	for i := range pcm {
		progress := float64(i) / float64(total)
		hz := n.fromHz + (n.toHz-n.fromHz)*progress
		phase += 2 * math.Pi * hz / cueSampleRate

		amp := n.gain
		if edge := min(i, total-1-i); edge < fade {
			amp *= 0.5 - 0.5*math.Cos(math.Pi*float64(edge)/float64(fade))
		}
		pcm[i] = int16(math.Round(math.Sin(phase) * amp * math.MaxInt16))
	}
	return pcm
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d * cueSampleRate / time.Second)
}
