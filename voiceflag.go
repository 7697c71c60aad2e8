// ABOUTME: Command-line voice definitions for the steptone binary
// ABOUTME: Parses repeatable -voice flags of the form shape:octave:notes@bpm
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/steptone/pkg/audio/osc"
	"github.com/Resonate-Protocol/steptone/pkg/synth"
)

// voiceList collects -voice flags
type voiceList []string

func (v *voiceList) String() string {
	return strings.Join(*v, ", ")
}

func (v *voiceList) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("empty voice")
	}
	*v = append(*v, s)
	return nil
}

// parseVoice reads "notes", "shape:notes" or "shape:octave:notes", each
// optionally followed by "@bpm" to give the voice its own tempo.
// Empty fields keep the value from base. notes may name a built-in pattern.
func parseVoice(spec string, base synth.VoiceConfig) (synth.VoiceConfig, error) {
	cfg := base
	cfg.Steps = nil

	body := spec
	if i := strings.LastIndex(spec, "@"); i >= 0 {
		body = spec[:i]
		n, err := strconv.ParseUint(strings.TrimSpace(spec[i+1:]), 10, 16)
		if err != nil || n == 0 {
			return cfg, fmt.Errorf("voice %q: bpm must be in 1..65535", spec)
		}
		cfg.BPM = uint16(n)
	}

	parts := strings.Split(body, ":")
	var shape, octave, notes string
	switch len(parts) {
	case 1:
		notes = parts[0]
	case 2:
		shape, notes = parts[0], parts[1]
	case 3:
		shape, octave, notes = parts[0], parts[1], parts[2]
	default:
		return cfg, fmt.Errorf("voice %q: expected shape:octave:notes[@bpm]", spec)
	}

	if shape = strings.TrimSpace(shape); shape != "" {
		wave, err := osc.ParseWaveType(shape)
		if err != nil {
			return cfg, fmt.Errorf("voice %q: %w", spec, err)
		}
		cfg.Wave = wave
	}

	if octave = strings.TrimSpace(octave); octave != "" {
		n, err := strconv.ParseUint(octave, 10, 32)
		if err != nil || n == 0 {
			return cfg, fmt.Errorf("voice %q: octave must be a positive integer", spec)
		}
		cfg.Octave = uint(n)
	}

	steps, err := parseNotes(notes)
	if err != nil {
		return cfg, fmt.Errorf("voice %q: %w", spec, err)
	}
	cfg.Steps = steps
	return cfg, nil
}

// parseNotes accepts a pattern name or a note list
func parseNotes(notes string) ([]float32, error) {
	notes = strings.TrimSpace(notes)
	if steps, err := synth.Pattern(notes); err == nil {
		return steps, nil
	}
	return synth.ParseSteps(notes)
}

// buildVoices returns one voice per -voice flag, or a single voice from
// -pattern when none were given
func buildVoices(specs []string, pattern string, base synth.VoiceConfig) ([]synth.VoiceConfig, error) {
	if len(specs) == 0 {
		steps, err := parseNotes(pattern)
		if err != nil {
			return nil, err
		}
		cfg := base
		cfg.Steps = steps
		return []synth.VoiceConfig{cfg}, nil
	}

	voices := make([]synth.VoiceConfig, 0, len(specs))
	for _, spec := range specs {
		cfg, err := parseVoice(spec, base)
		if err != nil {
			return nil, err
		}
		voices = append(voices, cfg)
	}
	return voices, nil
}
