// ABOUTME: Encoder interface definition
// ABOUTME: Common interface and constructor for all sample encoders
package encode

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

// ErrShortBuffer is returned when dst cannot hold every encoded sample
var ErrShortBuffer = errors.New("encode: destination buffer too small")

// Encoder encodes float32 samples to bytes
type Encoder interface {
	// Encode writes src into dst and returns the number of bytes written
	Encode(dst []byte, src []float32) (int, error)

	// BytesPerSample returns the encoded size of one sample
	BytesPerSample() int
}

// New returns the encoder matching format.BitDepth
func New(format audio.Format) (Encoder, error) {
	switch format.BitDepth {
	case 16:
		return PCM16{}, nil
	case 24:
		return PCM24{}, nil
	case 32:
		return Float32{}, nil
	}
	return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24, 32)", format.BitDepth)
}

func checkSize(dst []byte, src []float32, size int) error {
	if len(dst) < len(src)*size {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, len(src)*size, len(dst))
	}
	return nil
}
