// ABOUTME: Tests for audio types
// ABOUTME: Tests format validation and sample conversion functions
package audio

import (
	"math"
	"strings"
	"testing"
)

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name        string
		format      Format
		wantErr     bool
		errContains string
	}{
		{
			name:   "default format",
			format: DefaultFormat(),
		},
		{
			name:   "mono 16-bit",
			format: Format{SampleRate: 44100, Channels: 1, BitDepth: 16},
		},
		{
			name:        "zero sample rate",
			format:      Format{SampleRate: 0, Channels: 2, BitDepth: 32},
			wantErr:     true,
			errContains: "sample rate",
		},
		{
			name:        "zero channels",
			format:      Format{SampleRate: 48000, Channels: 0, BitDepth: 32},
			wantErr:     true,
			errContains: "channel count",
		},
		{
			name:        "unsupported bit depth",
			format:      Format{SampleRate: 48000, Channels: 2, BitDepth: 8},
			wantErr:     true,
			errContains: "unsupported bit depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFrameSize(t *testing.T) {
	f := Format{SampleRate: 48000, Channels: 2, BitDepth: 24}
	if f.BytesPerSample() != 3 {
		t.Errorf("expected 3 bytes per sample, got %d", f.BytesPerSample())
	}
	if f.FrameSize() != 6 {
		t.Errorf("expected frame size 6, got %d", f.FrameSize())
	}
}

func TestSanitizeSample(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected float32
	}{
		{"zero", 0, 0},
		{"in range", 0.25, 0.25},
		{"above", 1.5, 1},
		{"below", -3, -1},
		{"nan", float32(math.NaN()), 0},
		{"+inf", float32(math.Inf(1)), 1},
		{"-inf", float32(math.Inf(-1)), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSample(tt.input); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"full scale", 1, 32767},
		{"negative full scale", -1, -32767},
		{"half", 0.5, 16384},
		{"clipped", 2, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleToInt16(tt.input); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestSampleToInt24(t *testing.T) {
	if got := SampleToInt24(1); got != Max24Bit {
		t.Errorf("expected %d, got %d", Max24Bit, got)
	}
	if got := SampleToInt24(-1); got != -Max24Bit {
		t.Errorf("expected %d, got %d", -Max24Bit, got)
	}
}

func TestSampleTo24Bit(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected [3]byte
	}{
		{"zero", 0, [3]byte{0, 0, 0}},
		{"positive", 0x123456, [3]byte{0x56, 0x34, 0x12}},
		{"negative one", -1, [3]byte{0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleTo24Bit(tt.input); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
