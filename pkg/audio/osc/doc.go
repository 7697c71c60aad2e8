// ABOUTME: Oscillator package for audio and control-rate waveforms
// ABOUTME: Phase-accumulator oscillator plus a clamped low-frequency variant
// Package osc provides waveform generators.
//
// An Oscillator keeps its phase in turns, [0, 1). Each Run advances the phase
// by frequency/sampleRate and returns the waveform value at the new phase.
// Changing frequency or wave shape never resets phase, so pitch switches are
// click-free.
//
// An LFO uses the same generator for sub-audio modulation signals.
//
// Example:
//
//	o := osc.New(48000, osc.Sine)
//	o.SetFrequency(440)
//	for i := range buf {
//	    buf[i] = o.Run()
//	}
package osc
