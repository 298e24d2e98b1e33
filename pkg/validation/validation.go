// Package validation provides fail-fast checks for simulation parameters
// and sanitization for the trajectory feed handshake. Invalid configuration
// is a programmer error and must be rejected at construction time rather
// than producing silently wrong interpolation.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for feed handshake content
const (
	MaxViewerNameLen = 32
)

// Allow alphanumeric, spaces, hyphens, underscores, and basic punctuation
// for viewer names
var validViewerNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)

// Finite checks that a named scalar is neither NaN nor infinite
func Finite(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be finite, got %v", name, value)
	}
	return nil
}

// PositiveDuration checks that a named duration in seconds is finite and
// strictly positive. Both the integration step and the tracer interval must
// satisfy this before a simulation is constructed.
func PositiveDuration(name string, seconds float64) error {
	if err := Finite(name, seconds); err != nil {
		return err
	}
	if seconds <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, seconds)
	}
	return nil
}

// NonNegative checks that a named scalar is finite and not below zero
func NonNegative(name string, value float64) error {
	if err := Finite(name, value); err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%s must be non-negative, got %v", name, value)
	}
	return nil
}

// ValidateViewerName validates and sanitizes the name a feed viewer
// announces in its subscribe handshake
func ValidateViewerName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("viewer name cannot be empty")
	}

	if len(name) > MaxViewerNameLen {
		return "", fmt.Errorf("viewer name too long: %d characters (max %d)", len(name), MaxViewerNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("viewer name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("viewer name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("viewer name contains control characters")
		}
	}

	if !validViewerNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("viewer name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, and dots allowed)")
	}

	return trimmed, nil
}
