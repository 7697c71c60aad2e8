// ABOUTME: Non-realtime tap of the mixed signal
// ABOUTME: Buffers recent samples in a byte ring for scope views and diagnostics
package synth

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"
)

const bytesPerTapSample = 4

// Tap receives every mixed sample from the producer. When the reader falls
// behind, new samples are dropped rather than blocking the producer.
type Tap struct {
	ring    *ringbuffer.RingBuffer
	scratch [bytesPerTapSample]byte
	readBuf []byte

	dropped atomic.Uint64
}

// NewTap creates a tap holding up to size samples
func NewTap(size int) *Tap {
	if size < 1 {
		size = 1
	}
	return &Tap{
		ring: ringbuffer.New(size * bytesPerTapSample),
	}
}

// Offer stores v if there is room. Producer goroutine only.
func (t *Tap) Offer(v float32) {
	if t.ring.Free() < bytesPerTapSample {
		t.dropped.Add(1)
		return
	}
	binary.LittleEndian.PutUint32(t.scratch[:], math.Float32bits(v))
	if n, _ := t.ring.Write(t.scratch[:]); n != bytesPerTapSample {
		t.dropped.Add(1)
	}
}

// Drain moves up to len(dst) buffered samples into dst, oldest first, and
// returns how many were copied. Reader goroutine only.
func (t *Tap) Drain(dst []float32) int {
	want := len(dst) * bytesPerTapSample
	if cap(t.readBuf) < want {
		t.readBuf = make([]byte, want)
	}
	buf := t.readBuf[:want]

	n, _ := t.ring.TryRead(buf)
	samples := n / bytesPerTapSample
	for i := 0; i < samples; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*bytesPerTapSample:]))
	}
	return samples
}

// Buffered returns the number of samples waiting to be drained
func (t *Tap) Buffered() int {
	return t.ring.Length() / bytesPerTapSample
}

// Dropped returns how many samples were discarded because the tap was full
func (t *Tap) Dropped() uint64 {
	return t.dropped.Load()
}
