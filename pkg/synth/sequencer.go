// ABOUTME: Step sequencer voice
// ABOUTME: Derives step, gate and pitch from the sample clock and renders one oscillator
package synth

import (
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/steptone/pkg/audio/osc"
)

const (
	// DefaultOctave transposes step frequencies up four octaves
	DefaultOctave = 16
	// DefaultLFORate is the modulation rate used when VoiceConfig.LFORate is 0
	DefaultLFORate = 10.0
)

// VoiceConfig describes one sequencer voice
type VoiceConfig struct {
	Steps  []float32 // Hz, played in order and looped
	Wave   osc.WaveType
	Octave uint    // pitch multiplier applied to every step
	Ramp   float32 // envelope change per sample, (0, 1]

	// GateFraction is the share of each step that counts as on beat.
	// Zero selects a third of the step.
	GateFraction float32

	// Vibrato is the LFO pitch deviation in Hz; 0 disables it
	Vibrato float32
	// Tremolo is the LFO amplitude depth in [0, 1]; 0 disables it
	Tremolo float32
	// LFORate is the modulation rate in Hz; 0 selects DefaultLFORate
	LFORate float32

	// BPM overrides the engine tempo for this voice; 0 keeps the engine tempo
	BPM uint16
}

// NewVoiceConfig returns a sine voice with default octave and ramp
func NewVoiceConfig(steps ...float32) VoiceConfig {
	return VoiceConfig{
		Steps:  steps,
		Wave:   osc.Sine,
		Octave: DefaultOctave,
		Ramp:   DefaultRamp,
	}
}

// Sequencer renders one voice. Update must only be called from the producer
// goroutine; the observer methods are safe from any goroutine.
type Sequencer struct {
	bpm        uint16
	steps      []float32
	octave     float32
	tickPeriod uint64 // frames per step
	beatGate   uint64 // frames per step that are on beat
	vibrato    float32
	tremolo    float32

	osc *osc.Oscillator
	lfo *osc.LFO
	env Envelope

	stepIndex atomic.Uint64
	beatIndex atomic.Uint64
	onBeat    atomic.Bool
	signal    atomic.Uint32 // float32 bits
	level     atomic.Uint32 // float32 bits
	frequency atomic.Uint32 // float32 bits
}

// NewSequencer validates cfg and builds a voice for the given tempo and rate
func NewSequencer(bpm uint16, sampleRate int, cfg VoiceConfig) (*Sequencer, error) {
	if bpm == 0 {
		return nil, configErrorf("bpm", "must be positive")
	}
	if sampleRate <= 0 {
		return nil, configErrorf("sample rate", "must be positive, got %d", sampleRate)
	}
	if len(cfg.Steps) == 0 {
		return nil, configErrorf("steps", "sequence is empty")
	}
	for i, f := range cfg.Steps {
		if !(f > 0) || math.IsInf(float64(f), 0) {
			return nil, configErrorf("steps", "step %d has invalid frequency %v", i, f)
		}
	}
	if cfg.Octave == 0 {
		return nil, configErrorf("octave", "multiplier must be positive")
	}
	if !(cfg.Ramp > 0 && cfg.Ramp <= 1) {
		return nil, configErrorf("ramp", "increment must be in (0, 1], got %v", cfg.Ramp)
	}
	if math.IsNaN(float64(cfg.GateFraction)) || cfg.GateFraction < 0 || cfg.GateFraction > 1 {
		return nil, configErrorf("gate", "fraction must be in [0, 1], got %v", cfg.GateFraction)
	}
	if math.IsNaN(float64(cfg.Vibrato)) || math.IsInf(float64(cfg.Vibrato), 0) || cfg.Vibrato < 0 {
		return nil, configErrorf("vibrato", "depth must be a non-negative frequency, got %v", cfg.Vibrato)
	}
	if math.IsNaN(float64(cfg.Tremolo)) || cfg.Tremolo < 0 || cfg.Tremolo > 1 {
		return nil, configErrorf("tremolo", "depth must be in [0, 1], got %v", cfg.Tremolo)
	}

	tickPeriod := uint64(sampleRate) * 60 / uint64(bpm)
	if tickPeriod == 0 {
		return nil, configErrorf("bpm", "%d bpm is too fast for %d Hz", bpm, sampleRate)
	}

	beatGate := tickPeriod / 3
	if cfg.GateFraction > 0 {
		beatGate = uint64(float64(tickPeriod) * float64(cfg.GateFraction))
	}

	lfoRate := cfg.LFORate
	if lfoRate == 0 {
		lfoRate = DefaultLFORate
	}

	steps := make([]float32, len(cfg.Steps))
	copy(steps, cfg.Steps)

	return &Sequencer{
		bpm:        bpm,
		steps:      steps,
		octave:     float32(cfg.Octave),
		tickPeriod: tickPeriod,
		beatGate:   beatGate,
		vibrato:    cfg.Vibrato,
		tremolo:    cfg.Tremolo,
		osc:        osc.New(sampleRate, cfg.Wave),
		lfo:        osc.NewLFO(sampleRate, lfoRate),
		env:        NewEnvelope(cfg.Ramp),
	}, nil
}

// Update renders the sample for frame index elapsed
func (s *Sequencer) Update(elapsed uint64) float32 {
	tick := elapsed / s.tickPeriod
	rem := elapsed % s.tickPeriod
	idx := tick % uint64(len(s.steps))
	onBeat := rem > 0 && rem < s.beatGate

	mod := s.lfo.Run()

	freq := s.steps[idx] * s.octave
	if s.vibrato != 0 {
		freq += mod * s.vibrato
	}
	s.osc.SetFrequency(freq)

	value := s.osc.Run()
	level := s.env.Step(onBeat)
	value *= level

	if s.tremolo != 0 {
		// gain swings between 1-tremolo and 1
		value *= 1 - s.tremolo*0.5*(1-mod)
	}

	s.beatIndex.Store(tick)
	s.stepIndex.Store(idx)
	s.onBeat.Store(onBeat)
	s.level.Store(math.Float32bits(level))
	s.signal.Store(math.Float32bits(value))
	s.frequency.Store(math.Float32bits(s.osc.Frequency()))

	return value
}

// BPM returns the tempo the voice steps at
func (s *Sequencer) BPM() uint16 { return s.bpm }

// TickPeriod returns the step length in frames
func (s *Sequencer) TickPeriod() uint64 { return s.tickPeriod }

// BeatGate returns how many frames of each step are on beat
func (s *Sequencer) BeatGate() uint64 { return s.beatGate }

// Len returns the number of steps
func (s *Sequencer) Len() int { return len(s.steps) }

// StepIndex returns the step played by the last Update
func (s *Sequencer) StepIndex() int { return int(s.stepIndex.Load()) }

// BeatIndex returns the number of whole steps elapsed at the last Update
func (s *Sequencer) BeatIndex() uint64 { return s.beatIndex.Load() }

// OnBeat reports whether the last Update was inside the gate
func (s *Sequencer) OnBeat() bool { return s.onBeat.Load() }

// Signal returns the last rendered sample
func (s *Sequencer) Signal() float32 { return math.Float32frombits(s.signal.Load()) }

// Level returns the envelope level after the last Update
func (s *Sequencer) Level() float32 { return math.Float32frombits(s.level.Load()) }

// Frequency returns the oscillator frequency used by the last Update
func (s *Sequencer) Frequency() float32 { return math.Float32frombits(s.frequency.Load()) }
