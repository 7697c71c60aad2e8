// ABOUTME: Phase-accumulator oscillator
// ABOUTME: Advances phase by frequency/sampleRate turns per sample
package osc

import "math"

// Oscillator generates one waveform sample per Run call.
// Not safe for concurrent use; each voice owns its oscillator.
type Oscillator struct {
	sampleRate float64
	frequency  float32
	wave       WaveType
	phase      float64 // turns, [0, 1)
	inc        float64 // turns per sample
}

// New creates an oscillator at 0 Hz and phase 0
func New(sampleRate int, wave WaveType) *Oscillator {
	o := &Oscillator{wave: wave}
	if sampleRate > 0 {
		o.sampleRate = float64(sampleRate)
	}
	return o
}

// SetFrequency changes pitch from the next Run on. Phase is kept.
// NaN, infinite or negative values are treated as 0 Hz.
func (o *Oscillator) SetFrequency(hz float32) {
	if !(hz > 0) || math.IsInf(float64(hz), 0) {
		hz = 0
	}
	o.frequency = hz
	if o.sampleRate > 0 {
		o.inc = float64(hz) / o.sampleRate
	} else {
		o.inc = 0
	}
}

// Frequency returns the current frequency in Hz
func (o *Oscillator) Frequency() float32 {
	return o.frequency
}

// SetWaveType switches shape immediately. Phase is kept.
func (o *Oscillator) SetWaveType(w WaveType) {
	o.wave = w
}

// WaveType returns the current shape
func (o *Oscillator) WaveType() WaveType {
	return o.wave
}

// Phase returns the current phase in turns
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// SetPhase sets the phase, wrapped into [0, 1)
func (o *Oscillator) SetPhase(p float64) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	o.phase = wrap(p)
}

// Reset returns the phase to 0
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Run advances the phase by one sample and returns the waveform value at the
// new phase, in [-1, 1].
func (o *Oscillator) Run() float32 {
	o.phase = wrap(o.phase + o.inc)
	return o.wave.eval(o.phase)
}

func wrap(p float64) float64 {
	p -= math.Floor(p)
	// p can round up to exactly 1 for tiny negative inputs
	if p >= 1 {
		p = 0
	}
	return p
}
