// ABOUTME: Note name parsing and built-in step patterns
// ABOUTME: Converts scientific pitch names and Hz strings to step frequencies
package synth

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ConcertA is the reference pitch for A4
const ConcertA = 440.0

var noteOffsets = map[byte]int{
	'C': -9, 'D': -7, 'E': -5, 'F': -4, 'G': -2, 'A': 0, 'B': 2,
}

// ParseNote accepts a frequency in Hz ("440", "261.63") or a scientific
// pitch name ("A4", "C#5", "Bb3") and returns its frequency.
func ParseNote(s string) (float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty note")
	}

	if hz, err := strconv.ParseFloat(s, 32); err == nil {
		if !(hz > 0) || math.IsInf(hz, 0) {
			return 0, fmt.Errorf("invalid frequency: %q", s)
		}
		return float32(hz), nil
	}

	offset, ok := noteOffsets[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note name: %q", s)
	}
	rest := s[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			offset++
		} else {
			offset--
		}
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note %q", s)
	}
	if octave < -1 || octave > 9 {
		return 0, fmt.Errorf("octave out of range in note %q", s)
	}

	semitones := offset + (octave-4)*12
	return float32(ConcertA * math.Pow(2, float64(semitones)/12)), nil
}

// ParseSteps parses a comma or space separated list of notes
func ParseSteps(s string) ([]float32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no steps in %q", s)
	}

	steps := make([]float32, 0, len(fields))
	for _, f := range fields {
		hz, err := ParseNote(f)
		if err != nil {
			return nil, err
		}
		steps = append(steps, hz)
	}
	return steps, nil
}

var patterns = map[string]string{
	"a440":     "A4",
	"arp":      "A3 C4 E4 A4 E4 C4",
	"bassline": "F#2 C#2 E2 F#2 E2 C#2 B1 C#2",
	"scale":    "C4 D4 E4 F4 G4 A4 B4 C5",
}

// Pattern returns the steps of a built-in pattern
func Pattern(name string) ([]float32, error) {
	notes, ok := patterns[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown pattern: %q (available: %s)", name, strings.Join(PatternNames(), ", "))
	}
	return ParseSteps(notes)
}

// PatternNames lists the built-in patterns in sorted order
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
