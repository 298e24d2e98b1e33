// pkg/validation/validation_test.go
package validation

import (
	"math"
	"strings"
	"testing"
)

func TestPositiveDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		wantErr bool
	}{
		{name: "sixty_hertz_step", seconds: 1.0 / 60.0, wantErr: false},
		{name: "one_second", seconds: 1, wantErr: false},
		{name: "zero", seconds: 0, wantErr: true},
		{name: "negative", seconds: -0.5, wantErr: true},
		{name: "nan", seconds: math.NaN(), wantErr: true},
		{name: "infinite", seconds: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PositiveDuration("timeStep", tt.seconds)
			if (err != nil) != tt.wantErr {
				t.Errorf("PositiveDuration(%v) error = %v, wantErr %v", tt.seconds, err, tt.wantErr)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	if err := NonNegative("width", 0); err != nil {
		t.Errorf("zero should be allowed: %v", err)
	}
	if err := NonNegative("width", -1); err == nil {
		t.Error("negative value should be rejected")
	}
	if err := NonNegative("width", math.NaN()); err == nil {
		t.Error("NaN should be rejected")
	}
}

func TestFinite(t *testing.T) {
	if err := Finite("gravity", -9.81); err != nil {
		t.Errorf("finite negative value should be allowed: %v", err)
	}
	if err := Finite("gravity", math.Inf(-1)); err == nil {
		t.Error("negative infinity should be rejected")
	}
}

func TestValidateViewerName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "simple", input: "viewer-1", expected: "viewer-1", wantErr: false},
		{name: "trims_whitespace", input: "  watcher  ", expected: "watcher", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "only_whitespace", input: "   ", wantErr: true},
		{name: "too_long", input: strings.Repeat("a", MaxViewerNameLen+1), wantErr: true},
		{name: "control_characters", input: "bad\x00name", wantErr: true},
		{name: "invalid_characters", input: "viewer<script>", wantErr: true},
		{name: "invalid_utf8", input: string([]byte{0xff, 0xfe}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateViewerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateViewerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ValidateViewerName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
