// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the output Format and float sample conversion functions
// Package audio provides fundamental audio types shared by the synthesis
// core and the output backends.
//
// Samples flow through the engine as float32 in [-1, 1]. Backends that need
// integer PCM convert at the edge:
//   - float32 -> 16-bit
//   - float32 -> 24-bit (int32 container or packed bytes)
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 48000,
//	    Channels:   2,
//	    BitDepth:   32,
//	}
//	if err := format.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	sample16 := audio.SampleToInt16(0.5)
package audio
