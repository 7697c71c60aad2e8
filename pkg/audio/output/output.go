// ABOUTME: Audio output interface definition
// ABOUTME: Common interface and backend selection for playback devices
package output

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

// DefaultFramesPerBuffer is the device period requested when Options leaves it unset
const DefaultFramesPerBuffer = 512

// FillFunc fills an interleaved buffer. It runs on the device callback.
type FillFunc func(out []float32)

// Output represents an audio output device
type Output interface {
	// Open starts the device; fill is called whenever it needs samples
	Open(format audio.Format, fill FillFunc) error

	// Close stops the device and releases resources
	Close() error
}

// Options configure a backend
type Options struct {
	FramesPerBuffer int
	Volume          *Volume // nil means full scale
}

func (o Options) withDefaults() Options {
	if o.FramesPerBuffer <= 0 {
		o.FramesPerBuffer = DefaultFramesPerBuffer
	}
	if o.Volume == nil {
		o.Volume = NewVolume()
	}
	return o
}

var backends = map[string]func(Options) Output{
	"oto":       NewOto,
	"portaudio": NewPortAudio,
	"malgo":     NewMalgo,
	"null":      NewNull,
}

// New creates the named backend
func New(name string, opts Options) (Output, error) {
	ctor, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown output backend: %q (available: %s)", name, strings.Join(Backends(), ", "))
	}
	return ctor(opts), nil
}

// Backends lists the backend names accepted by New
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// callbackBuffer is the scratch space a device callback fills before encoding.
// It is sized at Open and only reallocates when a callback asks for more
// samples than ever before; the first such growth is logged.
type callbackBuffer struct {
	backend string
	buf     []float32
	grown   bool
}

func newCallbackBuffer(backend string, samples int) *callbackBuffer {
	return &callbackBuffer{backend: backend, buf: make([]float32, samples)}
}

// take returns a slice of n samples. Callback goroutine only.
func (b *callbackBuffer) take(n int) []float32 {
	if len(b.buf) < n {
		if !b.grown {
			log.Printf("Warning: %s callback asked for %d samples, more than the %d allocated at open; growing",
				b.backend, n, len(b.buf))
			b.grown = true
		}
		b.buf = make([]float32, n)
	}
	return b.buf[:n]
}
