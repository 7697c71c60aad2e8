// ABOUTME: Tests for waveform shapes
// ABOUTME: Tests parsing, naming and key points of each shape
package osc

import (
	"math"
	"testing"
)

func TestParseWaveType(t *testing.T) {
	tests := []struct {
		input    string
		expected WaveType
		wantErr  bool
	}{
		{"sine", Sine, false},
		{"SINE", Sine, false},
		{" square ", Square, false},
		{"saw", Saw, false},
		{"sawtooth", Saw, false},
		{"tri", Triangle, false},
		{"triangle", Triangle, false},
		{"noise", Sine, true},
		{"", Sine, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWaveType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWaveType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseWaveType(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWaveTypeString(t *testing.T) {
	for _, w := range []WaveType{Sine, Square, Saw, Triangle} {
		parsed, err := ParseWaveType(w.String())
		if err != nil || parsed != w {
			t.Errorf("round trip of %v failed: got %v, err %v", w, parsed, err)
		}
	}
	if got := WaveType(9).String(); got != "WaveType(9)" {
		t.Errorf("unexpected name for unknown shape: %s", got)
	}
}

func TestWaveShapes(t *testing.T) {
	tests := []struct {
		wave     WaveType
		phase    float64
		expected float32
	}{
		{Sine, 0, 0},
		{Sine, 0.25, 1},
		{Sine, 0.75, -1},
		{Square, 0, 1},
		{Square, 0.49, 1},
		{Square, 0.5, -1},
		{Square, 0.99, -1},
		{Saw, 0, -1},
		{Saw, 0.5, 0},
		{Saw, 0.75, 0.5},
		{Triangle, 0, 0},
		{Triangle, 0.25, 1},
		{Triangle, 0.5, 0},
		{Triangle, 0.75, -1},
	}

	for _, tt := range tests {
		got := tt.wave.eval(tt.phase)
		if math.Abs(float64(got-tt.expected)) > 1e-6 {
			t.Errorf("%v at phase %v: expected %v, got %v", tt.wave, tt.phase, tt.expected, got)
		}
	}
}

func TestWaveRange(t *testing.T) {
	for _, w := range []WaveType{Sine, Square, Saw, Triangle} {
		for i := 0; i < 1000; i++ {
			v := w.eval(float64(i) / 1000)
			if v < -1 || v > 1 {
				t.Fatalf("%v out of range at phase %v: %v", w, float64(i)/1000, v)
			}
		}
	}
}
