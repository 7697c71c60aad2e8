// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backends, the oto reader adapter, volume and the headless output
package output

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

func TestBackendsImplementOutput(t *testing.T) {
	var _ Output = (*PortAudio)(nil)
	var _ Output = (*Malgo)(nil)
	var _ Output = (*Oto)(nil)
	var _ Output = (*Null)(nil)
}

func TestNew(t *testing.T) {
	for _, name := range Backends() {
		out, err := New(name, Options{})
		if err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
		if out == nil {
			t.Errorf("New(%q) returned nil", name)
		}
	}

	if _, err := New("OTO", Options{}); err != nil {
		t.Errorf("backend names should be case-insensitive: %v", err)
	}

	_, err := New("jack", Options{})
	if err == nil || !strings.Contains(err.Error(), "unknown output backend") {
		t.Errorf("expected unknown backend error, got %v", err)
	}
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		muted    bool
		expected float32
	}{
		{"full", 100, false, 0.5},
		{"half", 50, false, 0.25},
		{"clamped high", 150, false, 0.5},
		{"clamped low", -10, false, 0},
		{"muted", 100, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVolume()
			v.Set(tt.level)
			v.SetMuted(tt.muted)

			samples := []float32{0.5, 0.5}
			v.Apply(samples)
			for i, s := range samples {
				if s != tt.expected {
					t.Errorf("sample %d: expected %v, got %v", i, tt.expected, s)
				}
			}
		})
	}
}

func TestFillReader(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 32}
	calls := 0
	fill := func(out []float32) {
		calls++
		for i := range out {
			out[i] = float32(i) / 100
		}
	}
	r := newFillReader(format, fill, NewVolume(), 4)

	// 3 whole stereo frames plus 5 stray bytes
	p := make([]byte, 3*8+5)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 24 {
		t.Errorf("expected 24 bytes (whole frames only), got %d", n)
	}
	if calls != 1 {
		t.Errorf("expected one fill call, got %d", calls)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != float32(i)/100 {
			t.Errorf("sample %d: expected %v, got %v", i, float32(i)/100, got)
		}
	}

	if r.buf.grown {
		t.Error("buffer should not grow for a read within the preallocation")
	}

	// Buffer larger than the preallocated one grows
	big := make([]byte, 1024*8)
	if n, _ := r.Read(big); n != len(big) {
		t.Errorf("expected %d bytes, got %d", len(big), n)
	}
	if !r.buf.grown {
		t.Error("expected the buffer to record growth")
	}

	// Less than a frame reads nothing
	if n, _ := r.Read(make([]byte, 7)); n != 0 {
		t.Errorf("expected 0 bytes for partial frame, got %d", n)
	}
}

func TestCallbackBuffer(t *testing.T) {
	b := newCallbackBuffer("test", 8)

	tests := []struct {
		name  string
		n     int
		grown bool
		size  int
	}{
		{"within allocation", 8, false, 8},
		{"smaller request", 3, false, 8},
		{"first growth", 16, true, 16},
		{"reuses grown buffer", 12, true, 16},
		{"second growth", 32, true, 32},
	}

	for _, tt := range tests {
		got := b.take(tt.n)
		if len(got) != tt.n {
			t.Errorf("%s: expected %d samples, got %d", tt.name, tt.n, len(got))
		}
		if b.grown != tt.grown {
			t.Errorf("%s: expected grown=%v", tt.name, tt.grown)
		}
		if len(b.buf) != tt.size {
			t.Errorf("%s: expected backing size %d, got %d", tt.name, tt.size, len(b.buf))
		}
	}
}

func TestCallbackBufferReusesBacking(t *testing.T) {
	b := newCallbackBuffer("test", 8)
	first := b.take(4)
	first[0] = 1
	if second := b.take(8); second[0] != 1 {
		t.Error("take within the allocation should reuse the same backing array")
	}
}

func TestNullOutput(t *testing.T) {
	out := NewNull(Options{FramesPerBuffer: 48}).(*Null)
	format := audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 32}

	sizes := make(chan int, 100)
	fill := func(buf []float32) {
		select {
		case sizes <- len(buf):
		default:
		}
	}

	if err := out.Open(format, fill); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := out.Open(format, fill); err == nil {
		t.Error("second Open should fail")
	}

	select {
	case n := <-sizes:
		if n != 96 {
			t.Errorf("expected 96 samples per callback, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fill was never called")
	}

	if err := out.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	frames := out.Frames()
	if frames == 0 || frames%48 != 0 {
		t.Errorf("unexpected frame count %d", frames)
	}
	if out.Callbacks() == 0 {
		t.Error("expected callbacks to be counted")
	}

	time.Sleep(10 * time.Millisecond)
	if out.Frames() != frames {
		t.Error("fill called after Close")
	}
	if err := out.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestNullOutputInvalidFormat(t *testing.T) {
	out := NewNull(Options{})
	if err := out.Open(audio.Format{SampleRate: 0, Channels: 2, BitDepth: 32}, func([]float32) {}); err == nil {
		t.Error("expected error for invalid format")
	}
}
