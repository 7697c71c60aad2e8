// ABOUTME: Lock-free single-producer single-consumer sample queue
// ABOUTME: Sole data path between the synthesis producer and the output callback
// Package ring provides a bounded SPSC queue of float32 samples.
//
// Thread assignment:
//   - Push, Free, Full: producer goroutine only
//   - Pop: consumer (audio callback) only
//   - Len, Empty, Cap: either side
//
// Neither side ever blocks. A full queue makes Push return false; an empty
// queue makes Pop return false.
//
// Example:
//
//	q, err := ring.New(1024)
//	q.Push(0.5)
//	v, ok := q.Pop()
package ring
