// ABOUTME: PCM sample encoders
// ABOUTME: Encodes float32 samples to 16-bit, 24-bit or float32 little-endian bytes
package encode

import (
	"encoding/binary"
	"math"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

// PCM16 encodes signed 16-bit little-endian
type PCM16 struct{}

func (PCM16) BytesPerSample() int { return 2 }

func (e PCM16) Encode(dst []byte, src []float32) (int, error) {
	if err := checkSize(dst, src, 2); err != nil {
		return 0, err
	}
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(audio.SampleToInt16(s)))
	}
	return len(src) * 2, nil
}

// PCM24 encodes packed signed 24-bit little-endian
type PCM24 struct{}

func (PCM24) BytesPerSample() int { return 3 }

func (e PCM24) Encode(dst []byte, src []float32) (int, error) {
	if err := checkSize(dst, src, 3); err != nil {
		return 0, err
	}
	for i, s := range src {
		b := audio.SampleTo24Bit(audio.SampleToInt24(s))
		dst[i*3] = b[0]
		dst[i*3+1] = b[1]
		dst[i*3+2] = b[2]
	}
	return len(src) * 3, nil
}

// Float32 encodes IEEE 754 float32 little-endian, clamped to [-1, 1]
type Float32 struct{}

func (Float32) BytesPerSample() int { return 4 }

func (e Float32) Encode(dst []byte, src []float32) (int, error) {
	if err := checkSize(dst, src, 4); err != nil {
		return 0, err
	}
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(audio.SanitizeSample(s)))
	}
	return len(src) * 4, nil
}
