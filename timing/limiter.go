// Package timing provides frame-pacing helpers for hosts driving the core
// in real time. None of this is part of the emulated machine itself.
package timing

import "time"

// CyclesPerFrame is the number of M-cycles the PPU takes to render one
// full 154-line frame (154 * 114).
const CyclesPerFrame = 17556

// CPUFrequency is the DMG CPU clock rate in M-cycles per second.
const CPUFrequency = 1048576

// TargetFPS is the DMG's exact (non-60) refresh rate.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration is the wall-clock duration of one frame at TargetFPS.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter paces frame presentation against wall-clock time.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame, or
	// returns immediately if timing is already behind schedule.
	WaitForNextFrame()
	// Reset clears any accumulated timing debt, e.g. after a pause.
	Reset()
}

// NewNoOpLimiter returns a Limiter that never waits, for headless/batch runs.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// realTimeLimiter paces frames to TargetFPS using a ticker.
type realTimeLimiter struct {
	ticker *time.Ticker
}

// NewRealTimeLimiter returns a Limiter that sleeps to match the DMG's
// native frame rate.
func NewRealTimeLimiter() Limiter {
	return &realTimeLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (l *realTimeLimiter) WaitForNextFrame() {
	<-l.ticker.C
}

func (l *realTimeLimiter) Reset() {
	l.ticker.Reset(FrameDuration())
}
