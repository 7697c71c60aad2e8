// ABOUTME: Output callback side of the sample queue
// ABOUTME: Pops one sample per frame, fans it out to all channels and advances the clock
package synth

import (
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/audio/ring"
	clocksync "github.com/Resonate-Protocol/steptone/pkg/sync"
)

// UnderrunStats is a snapshot of consumer diagnostics
type UnderrunStats struct {
	Count  uint64    // frames emitted without a queued sample
	Last   time.Time // zero if no underrun yet
	Frames uint64    // total frames emitted
}

// Consumer is called from the hardware output callback. Fill never blocks,
// allocates or locks.
type Consumer struct {
	queue    *ring.Queue
	clock    *clocksync.SampleClock
	channels int

	// last is only touched by the callback goroutine
	last float32

	underruns    atomic.Uint64
	lastUnderrun atomic.Int64 // unix nanos
	frames       atomic.Uint64
}

// NewConsumer creates a consumer writing interleaved frames of channels samples
func NewConsumer(queue *ring.Queue, clock *clocksync.SampleClock, channels int) *Consumer {
	if channels < 1 {
		channels = 1
	}
	return &Consumer{
		queue:    queue,
		clock:    clock,
		channels: channels,
	}
}

// Fill writes len(out)/channels frames. Each frame gets one queued sample on
// every channel; an empty queue repeats the previous sample (silence before
// the first one) and counts an underrun. The clock advances once per frame.
// A trailing partial frame is zeroed.
func (c *Consumer) Fill(out []float32) {
	ch := c.channels
	frames := len(out) / ch

	for f := 0; f < frames; f++ {
		v, ok := c.queue.Pop()
		if ok {
			v = audio.SanitizeSample(v)
			c.last = v
		} else {
			v = c.last
			c.underruns.Add(1)
			c.lastUnderrun.Store(time.Now().UnixNano())
		}

		frame := out[f*ch : f*ch+ch]
		for i := range frame {
			frame[i] = v
		}
		c.clock.Advance()
	}

	c.frames.Add(uint64(frames))

	tail := out[frames*ch:]
	for i := range tail {
		tail[i] = 0
	}
}

// Channels returns the frame width
func (c *Consumer) Channels() int {
	return c.channels
}

// Underruns returns a diagnostics snapshot
func (c *Consumer) Underruns() UnderrunStats {
	s := UnderrunStats{
		Count:  c.underruns.Load(),
		Frames: c.frames.Load(),
	}
	if ns := c.lastUnderrun.Load(); ns != 0 {
		s.Last = time.Unix(0, ns)
	}
	return s
}
