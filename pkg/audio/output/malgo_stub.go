//go:build !malgo

// ABOUTME: Malgo stub when miniaudio is not compiled in
// ABOUTME: Provides compile-time placeholder when built without the malgo tag
package output

import (
	"errors"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
)

var errMalgoDisabled = errors.New("malgo support not enabled (build with -tags malgo)")

// Malgo output implementation (stub)
type Malgo struct{}

// NewMalgo creates a new Malgo output
func NewMalgo(Options) Output {
	return &Malgo{}
}

// Open reports that malgo is not compiled in
func (m *Malgo) Open(audio.Format, FillFunc) error {
	return errMalgoDisabled
}

// Close releases resources
func (m *Malgo) Close() error {
	return nil
}
