// ABOUTME: Audio type definitions
// ABOUTME: Defines output format and float32 sample conversions
package audio

import (
	"fmt"
	"math"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// Defaults used when the device does not dictate a format
	DefaultSampleRate = 48000
	DefaultChannels   = 2
	DefaultBitDepth   = 32
)

// Format describes the stream the output device was opened with.
// BitDepth 32 means IEEE float; 16 and 24 are signed integer PCM.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns 48kHz stereo float
func DefaultFormat() Format {
	return Format{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// Validate checks the format is usable by the engine
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	switch f.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth: %d (supported: 16, 24, 32)", f.BitDepth)
	}
	return nil
}

// BytesPerSample returns the size of one encoded sample
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

// FrameSize returns the size in bytes of one interleaved frame
func (f Format) FrameSize() int {
	return f.Channels * f.BytesPerSample()
}

// SanitizeSample replaces NaN with silence and clamps to [-1, 1]; infinities saturate
func SanitizeSample(s float32) float32 {
	if s != s { // NaN
		return 0
	}
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// SampleToInt16 converts a float sample to 16-bit PCM
func SampleToInt16(s float32) int16 {
	s = SanitizeSample(s)
	return int16(math.Round(float64(s) * math.MaxInt16))
}

// SampleToInt24 converts a float sample to the 24-bit range (int32 container)
func SampleToInt24(s float32) int32 {
	s = SanitizeSample(s)
	return int32(math.Round(float64(s) * Max24Bit))
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}
