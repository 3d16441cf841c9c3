// File: stringx_test.go
// Title: Unit Tests for Core String Utilities
// Description: Unit tests for the core string utility functions in the
//              stringx package, covering edge cases and Unicode handling.
// Version: v0.1.0
// Created: 2025-01-24
// Modified: 2025-01-24
//
// Change History:
// - 2025-01-24 v0.1.0: Initial test implementation

package stringx

import "testing"

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{" ", false},
		{"a", false},
	}
	for _, tc := range cases {
		if got := IsEmpty(tc.input); got != tc.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{" ", true}, // non-breaking space
		{"a", false},
		{"  a  ", false},
	}
	for _, tc := range cases {
		if got := IsBlank(tc.input); got != tc.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsNotEmptyAndIsNotBlank(t *testing.T) {
	if !IsNotEmpty("a") || IsNotEmpty("") {
		t.Errorf("IsNotEmpty inverse broken")
	}
	if !IsNotBlank("a") || IsNotBlank("   ") {
		t.Errorf("IsNotBlank inverse broken")
	}
}
