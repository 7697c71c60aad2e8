// ABOUTME: Master volume shared between the UI and output backends
// ABOUTME: Lock-free gain with mute, applied after the engine fills a buffer
package output

import (
	"log"
	"sync/atomic"
)

// Volume is a 0-100 gain safe to change while the device is running
type Volume struct {
	level atomic.Int32
	muted atomic.Bool
}

// NewVolume returns full volume, unmuted
func NewVolume() *Volume {
	v := &Volume{}
	v.level.Store(100)
	return v
}

// Set sets the volume (0-100)
func (v *Volume) Set(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	v.level.Store(int32(volume))
	log.Printf("Volume set to %d", volume)
}

// Get returns current volume
func (v *Volume) Get() int {
	return int(v.level.Load())
}

// SetMuted sets mute state
func (v *Volume) SetMuted(muted bool) {
	v.muted.Store(muted)
	log.Printf("Muted: %v", muted)
}

// IsMuted returns mute state
func (v *Volume) IsMuted() bool {
	return v.muted.Load()
}

// Apply scales samples in place. Called from the device callback.
func (v *Volume) Apply(samples []float32) {
	gain := v.multiplier()
	if gain == 1 {
		return
	}
	for i := range samples {
		samples[i] *= gain
	}
}

func (v *Volume) multiplier() float32 {
	if v.muted.Load() {
		return 0
	}
	return float32(v.level.Load()) / 100
}
