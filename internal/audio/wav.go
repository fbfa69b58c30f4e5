package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Clip is one completed mono 16-bit recording.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
	Device     Device
}

// Duration is the playback length of the clip.
func (c Clip) Duration() time.Duration {
	channels := c.Channels
	if channels <= 0 {
		channels = 1
	}
	if c.SampleRate <= 0 {
		return 0
	}
	frames := len(c.PCM) / (bytesPerSample * channels)
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// WAV packages the clip as a RIFF/WAVE container.
func (c Clip) WAV() []byte {
	var out bytes.Buffer
	out.Grow(wavHeaderSize + len(c.PCM))
	// bytes.Buffer writes never fail
	_ = EncodeWAV(&out, c.PCM, c.SampleRate, c.Channels)
	return out.Bytes()
}

const wavHeaderSize = 44

// EncodeWAV writes little-endian 16-bit PCM with a minimal WAV header.
func EncodeWAV(w io.Writer, pcm []byte, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0")
	}
	const bitsPerSample = 16
	blockAlign := channels * bytesPerSample
	byteRate := sampleRate * blockAlign

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
