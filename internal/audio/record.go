package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrCaptureIncomplete reports a stream that stopped delivering before the
// full clip length was captured.
var ErrCaptureIncomplete = errors.New("capture ended before the clip was complete")

const defaultPollInterval = 100 * time.Millisecond

// RecordOptions shapes one fixed-length recording.
type RecordOptions struct {
	SampleRate   int
	Duration     time.Duration
	PollInterval time.Duration
}

// Samples is the exact number of mono samples a clip must contain.
func (o RecordOptions) Samples() int {
	return int(int64(o.SampleRate) * int64(o.Duration) / int64(time.Second))
}

func (o RecordOptions) validate() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0")
	}
	if o.Samples() <= 0 {
		return fmt.Errorf("duration must cover at least one sample")
	}
	return nil
}

// Progress receives integer percentages. 100 is delivered only after the
// capture has finished.
type Progress func(percent int)

type recorder struct {
	open  opener
	now   func() time.Time
	grace time.Duration
}

var defaultRecorder = recorder{open: openPulse, now: time.Now, grace: 2 * time.Second}

// Record captures exactly opts.Duration of mono 16-bit audio from device.
// It blocks until the clip is complete; no partial clip is ever returned.
func Record(ctx context.Context, device Device, opts RecordOptions, progress Progress) (Clip, error) {
	return defaultRecorder.record(ctx, device, opts, progress)
}

func (r recorder) record(ctx context.Context, device Device, opts RecordOptions, progress Progress) (Clip, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if err := opts.validate(); err != nil {
		return Clip{}, err
	}
	if progress == nil {
		progress = func(int) {}
	}

	buffer := newClipBuffer(opts.Samples() * bytesPerSample)
	s, err := r.open(ctx, device, opts.SampleRate, buffer)
	if err != nil {
		return Clip{}, err
	}

	started := r.now()
	captured := make(chan struct{})
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(captured)
		defer s.Close()

		deadline := time.NewTimer(opts.Duration + r.grace)
		defer deadline.Stop()

		select {
		case <-buffer.Full():
			s.Stop()
			return nil
		case <-groupCtx.Done():
			s.Stop()
			return groupCtx.Err()
		case <-deadline.C:
			s.Stop()
			return fmt.Errorf("%w: %d of %d bytes", ErrCaptureIncomplete, buffer.Len(), buffer.target)
		}
	})

	group.Go(func() error {
		ticker := time.NewTicker(opts.PollInterval)
		defer ticker.Stop()

		last := 0
		progress(last)
		for {
			select {
			case <-captured:
				return nil
			case <-ticker.C:
				if pct := elapsedPercent(r.now().Sub(started), opts.Duration); pct > last {
					last = pct
					progress(pct)
				}
			}
		}
	})

	if err := group.Wait(); err != nil {
		return Clip{}, err
	}

	progress(100)
	return Clip{
		PCM:        buffer.Bytes(),
		SampleRate: opts.SampleRate,
		Channels:   1,
		Device:     device,
	}, nil
}

// elapsedPercent maps elapsed time onto 0..99.
func elapsedPercent(elapsed time.Duration, total time.Duration) int {
	if total <= 0 || elapsed <= 0 {
		return 0
	}
	pct := int(elapsed * 100 / total)
	if pct > 99 {
		return 99
	}
	return pct
}
