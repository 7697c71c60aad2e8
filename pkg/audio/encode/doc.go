// ABOUTME: Sample encoder package for output backends and file rendering
// ABOUTME: Provides Encoder interface and little-endian PCM implementations
// Package encode converts float32 samples to interleaved little-endian bytes.
//
// Supports: signed 16-bit, packed signed 24-bit, IEEE float32
//
// Encoders write into a caller-owned buffer and never allocate, so they can
// run inside an output callback.
//
// Example:
//
//	encoder, err := encode.New(format)
//	buf := make([]byte, len(samples)*encoder.BytesPerSample())
//	n, err := encoder.Encode(buf, samples)
package encode
