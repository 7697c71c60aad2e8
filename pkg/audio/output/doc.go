// ABOUTME: Audio output package for driving the synthesis callback from hardware
// ABOUTME: Provides Output interface with oto, PortAudio, malgo and headless backends
// Package output provides pull-mode audio playback backends.
//
// Every backend is driven by the device: when it needs audio it calls the
// FillFunc given to Open with an interleaved float32 buffer. The FillFunc
// runs on the device thread and must not block.
//
// Backends:
//   - oto: default, pure Go on most platforms
//   - portaudio: build with -tags portaudio
//   - malgo: miniaudio, build with -tags malgo
//   - null: no device, a ticker stands in for the hardware clock
//
// Example:
//
//	out, err := output.New("oto", output.Options{})
//	err = out.Open(audio.DefaultFormat(), engine.Fill)
//	defer out.Close()
package output
