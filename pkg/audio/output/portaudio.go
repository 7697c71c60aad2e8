//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform callback stream that calls the fill function directly
package output

import (
	"errors"
	"fmt"
	"log"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	opts   Options
	stream *portaudio.Stream
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(opts Options) Output {
	return &PortAudio{opts: opts.withDefaults()}
}

// Open initializes PortAudio and starts a float32 output stream
func (p *PortAudio) Open(format audio.Format, fill FillFunc) error {
	if err := format.Validate(); err != nil {
		return err
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	volume := p.opts.Volume
	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), p.opts.FramesPerBuffer, func(out []float32) {
		fill(out)
		volume.Apply(out)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	log.Printf("Audio output initialized: %dHz, %d channels, %d frames/buffer (portaudio)",
		format.SampleRate, format.Channels, p.opts.FramesPerBuffer)
	return nil
}

// Close stops the stream and terminates PortAudio
func (p *PortAudio) Close() error {
	if p.stream == nil {
		return nil
	}
	err := errors.Join(p.stream.Stop(), p.stream.Close(), portaudio.Terminate())
	p.stream = nil
	return err
}
