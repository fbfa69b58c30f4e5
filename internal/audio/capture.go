package audio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const bytesPerSample = 2

// stream is a started capture feeding PCM into the sink it was opened with.
type stream interface {
	Stop()
	Close()
}

type opener func(ctx context.Context, device Device, sampleRate int, sink io.Writer) (stream, error)

type pulseStream struct {
	client *pulse.Client
	record *pulse.RecordStream
}

func (s *pulseStream) Stop() {
	s.record.Stop()
}

func (s *pulseStream) Close() {
	s.record.Close()
	s.client.Close()
}

// openPulse starts a mono s16 record stream on device.
func openPulse(_ context.Context, device Device, sampleRate int, sink io.Writer) (stream, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: resolve source %q: %v", ErrDeviceUnavailable, device.ID, err)
	}

	// 20ms fragments
	fragment := sampleRate / 50 * bytesPerSample
	record, err := client.NewRecord(
		pulse.NewWriter(sink, pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordBufferFragmentSize(uint32(fragment)),
		pulse.RecordMediaName("marker commentary"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: create pulse record stream: %v", ErrDeviceUnavailable, err)
	}

	record.Start()
	return &pulseStream{client: client, record: record}, nil
}

// clipBuffer accumulates PCM up to a fixed size and then refuses more.
type clipBuffer struct {
	mu     sync.Mutex
	pcm    []byte
	target int
	full   chan struct{}
	once   sync.Once
}

func newClipBuffer(target int) *clipBuffer {
	return &clipBuffer{
		pcm:    make([]byte, 0, target),
		target: target,
		full:   make(chan struct{}),
	}
}

// Write appends PCM. Once the target is reached it returns io.EOF so the
// stream stops delivering.
func (b *clipBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	remaining := b.target - len(b.pcm)
	if remaining <= 0 {
		b.mu.Unlock()
		return 0, io.EOF
	}
	accepted := p
	if len(accepted) > remaining {
		accepted = accepted[:remaining]
	}
	b.pcm = append(b.pcm, accepted...)
	done := len(b.pcm) == b.target
	b.mu.Unlock()

	if done {
		b.once.Do(func() { close(b.full) })
		return len(p), io.EOF
	}
	return len(p), nil
}

// Len reports bytes accepted so far.
func (b *clipBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pcm)
}

// Bytes returns a copy of the accepted PCM.
func (b *clipBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.pcm...)
}

// Full is closed once the target size has been reached.
func (b *clipBuffer) Full() <-chan struct{} {
	return b.full
}
