// ABOUTME: Waveform shape enumeration
// ABOUTME: Closed set of shapes evaluated by the oscillator
package osc

import (
	"fmt"
	"math"
	"strings"
)

// WaveType selects the oscillator waveform
type WaveType uint8

const (
	Sine WaveType = iota
	Square
	Saw
	Triangle
)

var waveNames = [...]string{
	Sine:     "sine",
	Square:   "square",
	Saw:      "saw",
	Triangle: "triangle",
}

func (w WaveType) String() string {
	if int(w) < len(waveNames) {
		return waveNames[w]
	}
	return fmt.Sprintf("WaveType(%d)", uint8(w))
}

// ParseWaveType converts a name such as "sine" or "saw" to a WaveType
func ParseWaveType(s string) (WaveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sq":
		return Square, nil
	case "saw", "sawtooth":
		return Saw, nil
	case "triangle", "tri":
		return Triangle, nil
	}
	return Sine, fmt.Errorf("unknown wave type: %q (supported: sine, square, saw, triangle)", s)
}

// eval returns the waveform value at phase p in [0, 1)
func (w WaveType) eval(p float64) float32 {
	switch w {
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case Saw:
		return float32(2*p - 1)
	case Triangle:
		switch {
		case p < 0.25:
			return float32(4 * p)
		case p < 0.75:
			return float32(2 - 4*p)
		default:
			return float32(4*p - 4)
		}
	default:
		return float32(math.Sin(2 * math.Pi * p))
	}
}
