// ABOUTME: Configuration error types
// ABOUTME: ConfigError names the offending field and wraps ErrInvalidConfig
package synth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every ConfigError
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRunning is returned by operations that need the producer goroutine stopped
	ErrRunning = errors.New("engine is running")
)

// ConfigError reports a rejected construction parameter
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
