// ABOUTME: Low-frequency oscillator for modulation signals
// ABOUTME: Same generator as Oscillator with frequency held to sub-audio range
package osc

import "math"

const (
	// MinLFOFrequency is the slowest rate an LFO is clamped to
	MinLFOFrequency = 0.01
	// MaxLFOFrequency is the fastest rate an LFO is clamped to
	MaxLFOFrequency = 20.0
)

// LFO is a control-rate oscillator. Its output in [-1, 1] modulates other
// parameters and is never sent to the output directly.
type LFO struct {
	Oscillator
}

// NewLFO creates a sine LFO at the given rate
func NewLFO(sampleRate int, hz float32) *LFO {
	l := &LFO{Oscillator: *New(sampleRate, Sine)}
	l.SetFrequency(hz)
	return l
}

// SetFrequency clamps hz to [MinLFOFrequency, MaxLFOFrequency].
// Non-finite values fall back to the minimum.
func (l *LFO) SetFrequency(hz float32) {
	switch {
	case math.IsNaN(float64(hz)), hz < MinLFOFrequency:
		hz = MinLFOFrequency
	case hz > MaxLFOFrequency:
		hz = MaxLFOFrequency
	}
	l.Oscillator.SetFrequency(hz)
}
