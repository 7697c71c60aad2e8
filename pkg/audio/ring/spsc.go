// ABOUTME: SPSC ring buffer of float32 samples
// ABOUTME: Monotonic atomic counters over a power-of-two backing array
package ring

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidCapacity is returned for a non-positive capacity
var ErrInvalidCapacity = errors.New("ring: capacity must be positive")

// maxCapacity keeps the backing array size computation from overflowing
const maxCapacity = 1 << 30

// Queue is a lock-free single-producer, single-consumer ring buffer.
//
// writePos and readPos only ever increase. The backing array is rounded up to
// a power of two so slots can be addressed with a mask, while the logical
// capacity stays exactly what the caller asked for.
//
// Memory ordering: Go's sync/atomic is sequentially consistent. The producer
// stores the sample before publishing writePos; the consumer loads writePos
// before reading the slot, so it always sees the stored sample.
type Queue struct {
	// Separate cache lines to prevent false sharing between producer and consumer.
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	buf      []float32
	mask     uint64
	capacity uint64
}

// New creates a queue holding at most capacity samples
func New(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if capacity > maxCapacity {
		return nil, fmt.Errorf("ring: capacity %d exceeds maximum %d", capacity, maxCapacity)
	}

	size := 1
	for size < capacity {
		size <<= 1
	}

	return &Queue{
		buf:      make([]float32, size),
		mask:     uint64(size - 1),
		capacity: uint64(capacity),
	}, nil
}

// Push appends one sample. Returns false without blocking if the queue is full.
// Only call from the producer goroutine.
func (q *Queue) Push(v float32) bool {
	w := q.writePos.Load()
	r := q.readPos.Load()
	if w-r >= q.capacity {
		return false
	}

	q.buf[w&q.mask] = v
	q.writePos.Store(w + 1)
	return true
}

// Pop removes the oldest sample. Returns false without blocking if the queue
// is empty; the queue is left untouched in that case.
// Only call from the consumer (audio callback).
func (q *Queue) Pop() (float32, bool) {
	r := q.readPos.Load()
	w := q.writePos.Load()
	if w == r {
		return 0, false
	}

	v := q.buf[r&q.mask]
	q.readPos.Store(r + 1)
	return v, true
}

// Len returns the number of queued samples
func (q *Queue) Len() int {
	// readPos is loaded first so w >= r always holds. A pop and push racing
	// between the two loads can overstate the count by the racing amount, so
	// clamp to capacity.
	r := q.readPos.Load()
	w := q.writePos.Load()
	n := w - r
	if n > q.capacity {
		n = q.capacity
	}
	return int(n)
}

// Cap returns the logical capacity
func (q *Queue) Cap() int {
	return int(q.capacity)
}

// Free returns the number of samples that can be pushed right now
func (q *Queue) Free() int {
	return q.Cap() - q.Len()
}

// Full reports whether Push would fail
func (q *Queue) Full() bool {
	return q.Len() >= q.Cap()
}

// Empty reports whether Pop would fail
func (q *Queue) Empty() bool {
	return q.Len() == 0
}
