// ABOUTME: Engine wiring clock, queue, voices, mixer and consumer
// ABOUTME: Owns the producer goroutine and reports underruns from outside the callback
package synth

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/audio/ring"
	clocksync "github.com/Resonate-Protocol/steptone/pkg/sync"
)

const (
	// DefaultBPM is one step per second
	DefaultBPM = 60
	// DefaultQueueCapacity is about 21ms of lookahead at 48kHz
	DefaultQueueCapacity = 1024
	// DefaultTapSize holds about 85ms of signal at 48kHz
	DefaultTapSize = 4096
	// DefaultReportInterval is how often underrun counters are checked
	DefaultReportInterval = time.Second

	minFillInterval = time.Millisecond
)

// Config holds engine construction parameters
type Config struct {
	BPM           uint16
	Format        audio.Format
	Voices        []VoiceConfig
	QueueCapacity int

	// TapSize is the scope tap size in samples; 0 disables the tap
	TapSize int
	// FillInterval is the producer tick; 0 derives a quarter of the queue duration
	FillInterval time.Duration
	// ReportInterval is the underrun log interval; 0 selects DefaultReportInterval
	ReportInterval time.Duration
}

// DefaultConfig returns 60 bpm, 48kHz stereo and a single A4 voice
func DefaultConfig() Config {
	return Config{
		BPM:           DefaultBPM,
		Format:        audio.DefaultFormat(),
		Voices:        []VoiceConfig{NewVoiceConfig(ConcertA)},
		QueueCapacity: DefaultQueueCapacity,
		TapSize:       DefaultTapSize,
	}
}

// VoiceStats is a snapshot of one sequencer
type VoiceStats struct {
	BPM       uint16
	Step      int
	Beat      uint64
	OnBeat    bool
	Level     float32
	Signal    float32
	Frequency float32
}

// Stats is a snapshot of the engine
type Stats struct {
	Elapsed   uint64
	Queued    int
	Capacity  int
	Underruns UnderrunStats
	Voices    []VoiceStats
}

// Engine runs a set of sequencers into one output stream
type Engine struct {
	config     Config
	clock      *clocksync.SampleClock
	queue      *ring.Queue
	sequencers []*Sequencer
	mixer      *Mixer
	consumer   *Consumer
	tap        *Tap

	mu      sync.Mutex
	running bool
	primed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New validates config and builds an engine. Nothing runs until Start.
func New(config Config) (*Engine, error) {
	if err := config.Format.Validate(); err != nil {
		return nil, &ConfigError{Field: "format", Reason: err.Error()}
	}
	if config.BPM == 0 {
		return nil, configErrorf("bpm", "must be positive")
	}
	if config.QueueCapacity <= 0 {
		return nil, configErrorf("queue capacity", "must be positive, got %d", config.QueueCapacity)
	}
	if config.TapSize < 0 {
		return nil, configErrorf("tap size", "must not be negative, got %d", config.TapSize)
	}

	queue, err := ring.New(config.QueueCapacity)
	if err != nil {
		return nil, &ConfigError{Field: "queue capacity", Reason: err.Error()}
	}

	sequencers := make([]*Sequencer, 0, len(config.Voices))
	voices := make([]Voice, 0, len(config.Voices))
	for i, vc := range config.Voices {
		bpm := config.BPM
		if vc.BPM != 0 {
			bpm = vc.BPM
		}
		seq, err := NewSequencer(bpm, config.Format.SampleRate, vc)
		if err != nil {
			return nil, fmt.Errorf("voice %d: %w", i, err)
		}
		sequencers = append(sequencers, seq)
		voices = append(voices, seq)
	}

	var tap *Tap
	if config.TapSize > 0 {
		tap = NewTap(config.TapSize)
	}

	if config.FillInterval <= 0 {
		queueDuration := time.Duration(config.QueueCapacity) * time.Second / time.Duration(config.Format.SampleRate)
		config.FillInterval = queueDuration / 4
	}
	if config.FillInterval < minFillInterval {
		config.FillInterval = minFillInterval
	}
	if config.ReportInterval <= 0 {
		config.ReportInterval = DefaultReportInterval
	}

	clock := clocksync.NewSampleClock()
	return &Engine{
		config:     config,
		clock:      clock,
		queue:      queue,
		sequencers: sequencers,
		mixer:      NewMixer(clock, queue, voices, tap),
		consumer:   NewConsumer(queue, clock, config.Format.Channels),
		tap:        tap,
	}, nil
}

// Start launches the producer and underrun reporter. They stop when ctx is
// cancelled or Stop is called. The first Start also primes the queue with
// one silent sample; a restart resumes the timeline without priming again.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrRunning
	}

	// One silent sample so the very first callback has data
	if !e.primed {
		e.mixer.Prime(1)
		e.primed = true
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true

	log.Printf("Synth engine starting: %d voice(s), %d bpm, %d Hz x %d ch, queue %d samples (%v)",
		len(e.sequencers), e.config.BPM, e.config.Format.SampleRate, e.config.Format.Channels,
		e.queue.Cap(), e.QueueLatency())

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.mixer.Run(runCtx, e.config.FillInterval)
	}()
	go func() {
		defer e.wg.Done()
		e.reportUnderruns(runCtx)
	}()

	return nil
}

// Stop cancels the producer and waits for it to exit. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.running = false
	e.mu.Unlock()

	e.wg.Wait()
	log.Printf("Synth engine stopped")
}

// Fill is the output callback. It matches output.FillFunc.
func (e *Engine) Fill(out []float32) {
	e.consumer.Fill(out)
}

// Render produces len(out) interleaved samples synchronously, running the
// producer and consumer in lockstep. Only valid while the engine is stopped.
func (e *Engine) Render(out []float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrRunning
	}

	chunk := e.queue.Cap() * e.config.Format.Channels
	for len(out) > 0 {
		n := chunk
		if n > len(out) {
			n = len(out)
		}
		e.mixer.Fill()
		e.consumer.Fill(out[:n])
		out = out[n:]
	}
	return nil
}

// Stats returns a snapshot safe to take from any goroutine
func (e *Engine) Stats() Stats {
	s := Stats{
		Elapsed:   e.clock.Read(),
		Queued:    e.queue.Len(),
		Capacity:  e.queue.Cap(),
		Underruns: e.consumer.Underruns(),
		Voices:    make([]VoiceStats, len(e.sequencers)),
	}
	for i, seq := range e.sequencers {
		s.Voices[i] = VoiceStats{
			BPM:       seq.BPM(),
			Step:      seq.StepIndex(),
			Beat:      seq.BeatIndex(),
			OnBeat:    seq.OnBeat(),
			Level:     seq.Level(),
			Signal:    seq.Signal(),
			Frequency: seq.Frequency(),
		}
	}
	return s
}

// Format returns the output format
func (e *Engine) Format() audio.Format { return e.config.Format }

// BPM returns the tempo
func (e *Engine) BPM() uint16 { return e.config.BPM }

// Clock returns the shared sample clock
func (e *Engine) Clock() *clocksync.SampleClock { return e.clock }

// Tap returns the scope tap, or nil if disabled
func (e *Engine) Tap() *Tap { return e.tap }

// Sequencers returns the voices in configuration order
func (e *Engine) Sequencers() []*Sequencer { return e.sequencers }

// QueueLatency returns the time a full queue covers
func (e *Engine) QueueLatency() time.Duration {
	return time.Duration(e.queue.Cap()) * time.Second / time.Duration(e.config.Format.SampleRate)
}

func (e *Engine) reportUnderruns(ctx context.Context) {
	ticker := time.NewTicker(e.config.ReportInterval)
	defer ticker.Stop()

	var reported uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u := e.consumer.Underruns()
			if u.Count > reported {
				log.Printf("Ringbuffer underrun: +%d (total %d, last at %s)",
					u.Count-reported, u.Count, u.Last.Format(time.RFC3339Nano))
				reported = u.Count
			}
		}
	}
}
