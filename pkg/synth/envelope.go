// ABOUTME: Linear amplitude ramp
// ABOUTME: Moves toward 1 while gated and toward 0 otherwise, one increment per sample
package synth

// DefaultRamp is the per-sample level change, about 21ms for a full swing at 48kHz
const DefaultRamp = 0.001

// Envelope is a click-free gain in [0, 1]
type Envelope struct {
	level float32
	ramp  float32
}

// NewEnvelope creates an envelope at level 0
func NewEnvelope(ramp float32) Envelope {
	return Envelope{ramp: ramp}
}

// Step moves the level one increment toward 1 if gate is set, toward 0
// otherwise, and returns the new level
func (e *Envelope) Step(gate bool) float32 {
	if gate {
		e.level += e.ramp
		if e.level > 1 {
			e.level = 1
		}
	} else {
		e.level -= e.ramp
		if e.level < 0 {
			e.level = 0
		}
	}
	return e.level
}

// Level returns the current gain
func (e *Envelope) Level() float32 {
	return e.level
}
