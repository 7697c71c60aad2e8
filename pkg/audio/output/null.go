// ABOUTME: Headless audio output
// ABOUTME: Calls the fill function on a ticker at the real-time rate and discards the audio
package output

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

// Null plays to nowhere. It keeps the same cadence a device would, so the
// engine sees realistic callback timing without audio hardware.
type Null struct {
	opts Options

	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}

	frames    atomic.Uint64
	callbacks atomic.Uint64
}

// NewNull creates a headless output
func NewNull(opts Options) Output {
	return &Null{opts: opts.withDefaults()}
}

// Open starts the callback goroutine
func (n *Null) Open(format audio.Format, fill FillFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopChan != nil {
		return errors.New("null output already opened")
	}
	if err := format.Validate(); err != nil {
		return err
	}

	period := time.Duration(n.opts.FramesPerBuffer) * time.Second / time.Duration(format.SampleRate)
	buf := make([]float32, n.opts.FramesPerBuffer*format.Channels)
	n.stopChan = make(chan struct{})
	n.done = make(chan struct{})

	go n.run(period, buf, format.Channels, fill)

	log.Printf("Audio output initialized: %dHz, %d channels, period %v (null)", format.SampleRate, format.Channels, period)
	return nil
}

func (n *Null) run(period time.Duration, buf []float32, channels int, fill FillFunc) {
	defer close(n.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fill(buf)
			n.opts.Volume.Apply(buf)
			n.frames.Add(uint64(len(buf) / channels))
			n.callbacks.Add(1)
		case <-n.stopChan:
			return
		}
	}
}

// Close stops the callback goroutine and waits for it to exit
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopChan == nil {
		return nil
	}
	close(n.stopChan)
	<-n.done
	n.stopChan = nil
	return nil
}

// Frames returns the number of frames requested so far
func (n *Null) Frames() uint64 {
	return n.frames.Load()
}

// Callbacks returns the number of fill calls so far
func (n *Null) Callbacks() uint64 {
	return n.callbacks.Load()
}
