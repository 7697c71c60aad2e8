// ABOUTME: Lock-free elapsed sample counter
// ABOUTME: Single writer (output callback), many readers (sequencers, mixer)
package sync

import (
	"sync/atomic"
	"time"
)

// SampleClock counts frames emitted to the output device.
//
// Advance must only be called from the output callback, after the frame's
// sample has been written to the hardware buffer. Read may be called from
// any goroutine and returns a value that never goes backwards.
type SampleClock struct {
	elapsed atomic.Uint64
}

// NewSampleClock creates a clock at frame zero
func NewSampleClock() *SampleClock {
	return &SampleClock{}
}

// Advance publishes one more emitted frame
func (c *SampleClock) Advance() {
	c.elapsed.Add(1)
}

// Read returns the number of frames emitted so far
func (c *SampleClock) Read() uint64 {
	return c.elapsed.Load()
}

// Elapsed converts the frame count to wall time at the given sample rate
func (c *SampleClock) Elapsed(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	frames := c.elapsed.Load()
	secs := frames / uint64(sampleRate)
	rem := frames % uint64(sampleRate)
	return time.Duration(secs)*time.Second +
		time.Duration(rem)*time.Second/time.Duration(sampleRate)
}
