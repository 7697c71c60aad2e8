// ABOUTME: Producer loop that mixes voices into the sample queue
// ABOUTME: Averages every voice per frame and keeps the queue topped up
package synth

import (
	"context"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio/ring"
	clocksync "github.com/Resonate-Protocol/steptone/pkg/sync"
)

// Voice renders one sample for an absolute frame index
type Voice interface {
	Update(elapsed uint64) float32
}

// Mixer is the producer side of the queue. Fill and Run must only be used
// from one goroutine at a time.
type Mixer struct {
	clock  *clocksync.SampleClock
	queue  *ring.Queue
	voices []Voice
	tap    *Tap

	// next is the frame index the next pushed sample will be emitted at
	next uint64
}

// NewMixer creates a mixer over a fixed voice set. tap may be nil.
func NewMixer(clock *clocksync.SampleClock, queue *ring.Queue, voices []Voice, tap *Tap) *Mixer {
	v := make([]Voice, len(voices))
	copy(v, voices)
	return &Mixer{
		clock:  clock,
		queue:  queue,
		voices: v,
		tap:    tap,
	}
}

// Prime pushes n samples of silence so the first callbacks have data
func (m *Mixer) Prime(n int) int {
	pushed := 0
	for pushed < n && m.queue.Push(0) {
		pushed++
	}
	m.next += uint64(pushed)
	return pushed
}

// Fill pushes mixed samples until the queue is full and returns how many
// were pushed. Voices see the frame index each sample will be emitted at,
// not the clock value when Fill runs.
func (m *Mixer) Fill() int {
	// Emitted frames plus queued samples is where the next push will play.
	// Underruns advance the clock without consuming a sample, so resync
	// forward when that happens.
	if pos := m.clock.Read() + uint64(m.queue.Len()); pos > m.next {
		m.next = pos
	}

	pushed := 0
	for !m.queue.Full() {
		v := m.mix(m.next)
		if !m.queue.Push(v) {
			break
		}
		if m.tap != nil {
			m.tap.Offer(v)
		}
		m.next++
		pushed++
	}
	return pushed
}

// Run calls Fill every interval until ctx is cancelled. Samples still queued
// at shutdown are discarded with the queue.
func (m *Mixer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.Fill()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Mixer) mix(pos uint64) float32 {
	if len(m.voices) == 0 {
		return 0
	}
	var sum float32
	for _, v := range m.voices {
		sum += v.Update(pos)
	}
	return sum / float32(len(m.voices))
}
