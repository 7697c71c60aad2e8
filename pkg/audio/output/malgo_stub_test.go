//go:build !malgo

// ABOUTME: Tests for the malgo stub
// ABOUTME: Verifies the stub reports that malgo is not compiled in
package output

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

func TestMalgoStub(t *testing.T) {
	out := NewMalgo(Options{})
	err := out.Open(audio.DefaultFormat(), func([]float32) {})
	if !errors.Is(err, errMalgoDisabled) {
		t.Errorf("expected errMalgoDisabled, got %v", err)
	}
	if err := out.Close(); err != nil {
		t.Errorf("Close on stub failed: %v", err)
	}
}
