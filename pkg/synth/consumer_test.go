// ABOUTME: Tests for the output callback consumer
// ABOUTME: Tests channel fan-out, underrun substitution, clock advance and allocation
package synth

import (
	"math"
	"testing"

	"github.com/Resonate-Protocol/steptone/pkg/audio/ring"
	clocksync "github.com/Resonate-Protocol/steptone/pkg/sync"
)

func TestConsumerSilenceBeforeFirstSample(t *testing.T) {
	q := newTestQueue(t, 8)
	clock := clocksync.NewSampleClock()
	c := NewConsumer(q, clock, 2)

	out := []float32{9, 9, 9, 9, 9, 9, 9, 9}
	c.Fill(out)

	for i, v := range out {
		if v != 0 {
			t.Errorf("sample %d: expected silence, got %v", i, v)
		}
	}
	u := c.Underruns()
	if u.Count != 4 {
		t.Errorf("expected 4 underruns, got %d", u.Count)
	}
	if u.Last.IsZero() {
		t.Error("expected underrun timestamp")
	}
	if clock.Read() != 4 {
		t.Errorf("clock should advance on underrun frames too, got %d", clock.Read())
	}
}

func TestConsumerReplicatesChannels(t *testing.T) {
	q := newTestQueue(t, 8)
	clock := clocksync.NewSampleClock()
	c := NewConsumer(q, clock, 3)

	q.Push(0.1)
	q.Push(0.2)

	out := make([]float32, 6)
	c.Fill(out)

	expected := []float32{0.1, 0.1, 0.1, 0.2, 0.2, 0.2}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("sample %d: expected %v, got %v", i, expected[i], out[i])
		}
	}
	if clock.Read() != 2 {
		t.Errorf("expected clock 2, got %d", clock.Read())
	}
	if u := c.Underruns(); u.Count != 0 || !u.Last.IsZero() || u.Frames != 2 {
		t.Errorf("unexpected stats: %+v", u)
	}
}

func TestConsumerRepeatsLastSample(t *testing.T) {
	q := newTestQueue(t, 8)
	c := NewConsumer(q, clocksync.NewSampleClock(), 1)

	q.Push(0.7)
	out := make([]float32, 3)
	c.Fill(out)

	for i, v := range out {
		if v != 0.7 {
			t.Errorf("sample %d: expected 0.7, got %v", i, v)
		}
	}
	if c.Underruns().Count != 2 {
		t.Errorf("expected 2 underruns, got %d", c.Underruns().Count)
	}
}

func TestConsumerDrainScenario(t *testing.T) {
	// A full 1024-sample queue feeds exactly 1024 frames; the 1025th is an underrun
	q := newTestQueue(t, 1024)
	clock := clocksync.NewSampleClock()
	m := NewMixer(clock, q, []Voice{constVoice(0.5)}, nil)
	c := NewConsumer(q, clock, 1)

	if n := m.Fill(); n != 1024 {
		t.Fatalf("expected 1024 pushed, got %d", n)
	}

	out := make([]float32, 1025)
	c.Fill(out)

	u := c.Underruns()
	if u.Count != 1 {
		t.Errorf("expected exactly one underrun, got %d", u.Count)
	}
	if out[1024] != out[1023] {
		t.Errorf("underrun frame should repeat last sample %v, got %v", out[1023], out[1024])
	}
	if clock.Read() != 1025 {
		t.Errorf("expected clock 1025, got %d", clock.Read())
	}
}

func TestConsumerPartialFrame(t *testing.T) {
	q := newTestQueue(t, 8)
	c := NewConsumer(q, clocksync.NewSampleClock(), 2)
	q.Push(0.5)
	q.Push(0.5)

	out := []float32{9, 9, 9, 9, 9}
	c.Fill(out)

	if out[4] != 0 {
		t.Errorf("trailing partial frame should be zeroed, got %v", out[4])
	}
	if c.Underruns().Frames != 2 {
		t.Errorf("expected 2 frames, got %d", c.Underruns().Frames)
	}
}

func TestConsumerSanitizes(t *testing.T) {
	tests := []struct {
		in       float32
		expected float32
	}{
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 1},
		{2, 1},
		{-3, -1},
		{0.25, 0.25},
	}

	for _, tt := range tests {
		q := newTestQueue(t, 1)
		c := NewConsumer(q, clocksync.NewSampleClock(), 1)
		q.Push(tt.in)

		out := make([]float32, 2)
		c.Fill(out)
		if out[0] != tt.expected {
			t.Errorf("input %v: expected %v, got %v", tt.in, tt.expected, out[0])
		}
		if out[1] != tt.expected {
			t.Errorf("input %v: repeated sample should be sanitized, got %v", tt.in, out[1])
		}
	}
}

func TestConsumerNoAllocations(t *testing.T) {
	q := newTestQueue(t, 1024)
	clock := clocksync.NewSampleClock()
	m := NewMixer(clock, q, []Voice{constVoice(0.5)}, nil)
	c := NewConsumer(q, clock, 2)
	out := make([]float32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		m.Fill()
		c.Fill(out)
	})
	if allocs != 0 {
		t.Errorf("expected no allocations, got %v", allocs)
	}
}

func BenchmarkConsumerFill(b *testing.B) {
	q, _ := ring.New(1024)
	clock := clocksync.NewSampleClock()
	m := NewMixer(clock, q, []Voice{constVoice(0.5)}, nil)
	c := NewConsumer(q, clock, 2)
	out := make([]float32, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Fill()
		c.Fill(out)
	}
}
