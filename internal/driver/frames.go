package driver

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// TickerFrames produces frames on the wall clock at a fixed interval.
type TickerFrames struct {
	interval time.Duration
}

// NewTickerFrames creates a wall-clock frame source. Non-positive
// intervals use DefaultFrameInterval.
func NewTickerFrames(interval time.Duration) *TickerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerFrames{interval: interval}
}

// Now returns the wall clock time.
func (f *TickerFrames) Now() time.Time {
	return time.Now()
}

// NextFrame waits one interval or until ctx is canceled.
// Uses time.NewTimer instead of time.After to prevent timer leak.
func (f *TickerFrames) NextFrame(ctx context.Context) (time.Time, error) {
	timer := time.NewTimer(f.interval)
	defer timer.Stop()

	select {
	case ts := <-timer.C:
		return ts, nil
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}

// ManualFrames is a frame source advanced explicitly with Step and Fail.
// Each call blocks until a drive consumes the frame. The clock only moves
// after delivery, so a drive that reads Now before its first NextFrame
// always sees the time preceding that frame.
type ManualFrames struct {
	mu     sync.Mutex
	now    time.Time
	frames chan frame
}

type frame struct {
	ts  time.Time
	err error
}

// NewManualFrames creates a manual source whose clock starts at start.
func NewManualFrames(start time.Time) *ManualFrames {
	return &ManualFrames{
		now:    start,
		frames: make(chan frame),
	}
}

// Now returns the time of the most recent frame.
func (m *ManualFrames) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Step delivers a frame d after the current clock and advances the clock
// once a drive has received it.
func (m *ManualFrames) Step(d time.Duration) {
	m.mu.Lock()
	ts := m.now.Add(d)
	m.mu.Unlock()

	m.frames <- frame{ts: ts}
	m.advance(ts)
}

// Deliver sends a frame at an explicit time without moving the clock
// backwards. It is used to replay out-of-order or duplicate timestamps.
func (m *ManualFrames) Deliver(ts time.Time) {
	m.frames <- frame{ts: ts}
	m.advance(ts)
}

func (m *ManualFrames) advance(ts time.Time) {
	m.mu.Lock()
	if ts.After(m.now) {
		m.now = ts
	}
	m.mu.Unlock()
}

// Fail makes the waiting drive's next frame fail with err.
func (m *ManualFrames) Fail(err error) {
	m.frames <- frame{err: err}
}

// NextFrame waits for Step, Deliver, or Fail.
func (m *ManualFrames) NextFrame(ctx context.Context) (time.Time, error) {
	select {
	case f := <-m.frames:
		return f.ts, f.err
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}
