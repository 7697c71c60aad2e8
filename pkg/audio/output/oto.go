// ABOUTME: Oto-based audio output implementation
// ABOUTME: The oto player pulls bytes from a reader that runs the fill callback
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/audio/encode"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library.
// oto allows one context per process, so an Oto can only be opened once.
type Oto struct {
	opts Options

	mu     sync.Mutex
	otoCtx *oto.Context
	player *oto.Player
	reader *fillReader
}

// NewOto creates a new Oto output
func NewOto(opts Options) Output {
	return &Oto{opts: opts.withDefaults()}
}

// Open initializes the output device and starts playback
func (o *Oto) Open(format audio.Format, fill FillFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		return errors.New("oto output already opened")
	}
	if err := format.Validate(); err != nil {
		return err
	}
	if format.BitDepth != 32 {
		log.Printf("Warning: oto backend plays float32, ignoring requested bitDepth=%d", format.BitDepth)
		format.BitDepth = 32
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(o.opts.FramesPerBuffer) * time.Second / time.Duration(format.SampleRate),
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.reader = newFillReader(format, fill, o.opts.Volume, o.opts.FramesPerBuffer)
	o.player = o.otoCtx.NewPlayer(o.reader)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels (oto/F32LE)", format.SampleRate, format.Channels)
	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	if o.player != nil {
		o.player.Pause()
		errs = append(errs, o.player.Close())
		o.player = nil
	}
	if o.otoCtx != nil {
		errs = append(errs, o.otoCtx.Suspend())
	}
	return errors.Join(errs...)
}

// fillReader adapts a FillFunc to the io.Reader oto pulls from
type fillReader struct {
	fill     FillFunc
	volume   *Volume
	encoder  encode.Encoder
	channels int
	buf      *callbackBuffer
}

func newFillReader(format audio.Format, fill FillFunc, volume *Volume, frames int) *fillReader {
	// oto asks for more than one period at a time; start with headroom
	return &fillReader{
		fill:     fill,
		volume:   volume,
		encoder:  encode.Float32{},
		channels: format.Channels,
		buf:      newCallbackBuffer("oto", frames*format.Channels*4),
	}
}

// Read fills as many whole frames as fit in p
func (r *fillReader) Read(p []byte) (int, error) {
	frameBytes := r.channels * r.encoder.BytesPerSample()
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	samples := r.buf.take(frames * r.channels)

	r.fill(samples)
	r.volume.Apply(samples)
	return r.encoder.Encode(p, samples)
}
