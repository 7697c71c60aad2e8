// ABOUTME: Tests for the SPSC sample queue
// ABOUTME: Tests capacity, FIFO order, full/empty states and concurrent use
package ring

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		input    int
		expected int
		backing  int
	}{
		{1, 1, 1},
		{3, 3, 4},
		{100, 100, 128},
		{1000, 1000, 1024},
		{1024, 1024, 1024},
		{1025, 1025, 2048},
	}

	for _, tt := range tests {
		q, err := New(tt.input)
		if err != nil {
			t.Fatalf("New(%d): unexpected error: %v", tt.input, err)
		}
		if q.Cap() != tt.expected {
			t.Errorf("New(%d): expected capacity %d, got %d", tt.input, tt.expected, q.Cap())
		}
		if len(q.buf) != tt.backing {
			t.Errorf("New(%d): expected backing size %d, got %d", tt.input, tt.backing, len(q.buf))
		}
		if q.mask != uint64(tt.backing-1) {
			t.Errorf("New(%d): expected mask %d, got %d", tt.input, tt.backing-1, q.mask)
		}
	}
}

func TestNewInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := New(capacity); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("New(%d): expected ErrInvalidCapacity, got %v", capacity, err)
		}
	}
	if _, err := New(maxCapacity + 1); err == nil {
		t.Error("expected error for oversized capacity")
	}
}

func TestPushPop(t *testing.T) {
	q, _ := New(16)

	if !q.Push(0.25) {
		t.Fatal("Push on empty queue failed")
	}

	v, ok := q.Pop()
	if !ok {
		t.Fatal("Pop after Push failed")
	}
	if v != 0.25 {
		t.Errorf("expected 0.25, got %v", v)
	}
}

func TestFIFOOrder(t *testing.T) {
	q, _ := New(8)

	for i := 0; i < 5; i++ {
		q.Push(float32(i))
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		if !ok || v != float32(i) {
			t.Fatalf("pop %d: expected (%d, true), got (%v, %v)", i, i, v, ok)
		}
	}
}

func TestEmptyPop(t *testing.T) {
	q, _ := New(4)

	v, ok := q.Pop()
	if ok {
		t.Error("Pop on empty queue: expected false")
	}
	if v != 0 {
		t.Errorf("Pop on empty queue: expected zero value, got %v", v)
	}

	// Failed pops must not corrupt state
	for i := 0; i < 10; i++ {
		q.Pop()
	}
	if q.Len() != 0 {
		t.Errorf("Len after failed pops: expected 0, got %d", q.Len())
	}
	if !q.Push(1) {
		t.Fatal("Push after failed pops failed")
	}
	if v, ok := q.Pop(); !ok || v != 1 {
		t.Errorf("expected (1, true), got (%v, %v)", v, ok)
	}
}

func TestFullPush(t *testing.T) {
	// Non power-of-two capacity is honored exactly
	q, _ := New(5)

	for i := 0; i < 5; i++ {
		if !q.Push(float32(i)) {
			t.Fatalf("Push %d: expected success", i)
		}
	}
	if q.Push(99) {
		t.Error("Push on full queue: expected false")
	}
	if q.Len() != 5 {
		t.Errorf("Len: expected 5, got %d", q.Len())
	}

	// Rejected push did not overwrite anything
	for i := 0; i < 5; i++ {
		if v, _ := q.Pop(); v != float32(i) {
			t.Errorf("pop %d: expected %d, got %v", i, i, v)
		}
	}
}

func TestNeverFullAndEmpty(t *testing.T) {
	for _, capacity := range []int{1, 2, 7, 64} {
		q, _ := New(capacity)

		check := func(label string) {
			if q.Full() && q.Empty() {
				t.Errorf("capacity %d, %s: queue reports both full and empty", capacity, label)
			}
			if q.Len()+q.Free() != capacity {
				t.Errorf("capacity %d, %s: Len(%d) + Free(%d) != %d", capacity, label, q.Len(), q.Free(), capacity)
			}
		}

		check("initial")
		for i := 0; i < capacity+2; i++ {
			q.Push(1)
			check("after push")
		}
		for i := 0; i < capacity+2; i++ {
			q.Pop()
			check("after pop")
		}
	}
}

func TestMultipleWrapArounds(t *testing.T) {
	q, _ := New(3)

	// Many push/pop cycles to wrap the backing array repeatedly
	for cycle := 0; cycle < 1000; cycle++ {
		for j := 0; j < 3; j++ {
			if !q.Push(float32(cycle*3 + j)) {
				t.Fatalf("cycle %d: push %d failed", cycle, j)
			}
		}
		for j := 0; j < 3; j++ {
			v, ok := q.Pop()
			if !ok || v != float32(cycle*3+j) {
				t.Fatalf("cycle %d: expected %d, got (%v, %v)", cycle, cycle*3+j, v, ok)
			}
		}
	}
}

func TestDrainFullQueue(t *testing.T) {
	q, _ := New(1024)

	pushed := 0
	for q.Push(float32(pushed)) {
		pushed++
	}
	if pushed != 1024 {
		t.Fatalf("expected 1024 pushes before full, got %d", pushed)
	}

	for i := 0; i < 1024; i++ {
		if _, ok := q.Pop(); !ok {
			t.Fatalf("pop %d failed", i+1)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("pop 1025 should fail")
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	q, _ := New(256)

	const iterations = 200000

	var wg sync.WaitGroup
	wg.Add(2)

	// Producer goroutine
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; {
			if !q.Push(float32(i)) {
				// Let the consumer run when GOMAXPROCS is 1
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	// Consumer goroutine
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; {
			v, ok := q.Pop()
			if !ok {
				runtime.Gosched()
				continue
			}
			if v != float32(i) {
				t.Errorf("data corruption at %d: got %v", i, v)
				return
			}
			i++
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("test timeout, possible deadlock")
	}
}

// Benchmarks

func BenchmarkPushPop(b *testing.B) {
	q, _ := New(1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(0.5)
		q.Pop()
	}
}

func BenchmarkConcurrentPushPop(b *testing.B) {
	q, _ := New(1024)

	b.ResetTimer()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < b.N; {
			if !q.Push(0.5) {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < b.N; {
			if _, ok := q.Pop(); !ok {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	wg.Wait()
}
