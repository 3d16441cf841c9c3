// File: mapx_test.go
// Title: Map Utilities Tests
// Description: Test suite for the mapx utility functions.
// Version: v0.1.0
// Created: 2025-01-24
// Modified: 2025-01-24
//
// Change History:
// - 2025-01-24 v0.1.0: Initial test implementation

package mapx

import (
	"sort"
	"testing"
)

func TestKeys(t *testing.T) {
	t.Run("returns all keys", func(t *testing.T) {
		m := map[string]int{"a": 1, "b": 2, "c": 3}
		keys := Keys(m)
		sort.Strings(keys)

		if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
			t.Errorf("Keys() = %v", keys)
		}
	})

	t.Run("nil map", func(t *testing.T) {
		if keys := Keys[string, int](nil); keys != nil {
			t.Errorf("Keys(nil) = %v, want nil", keys)
		}
	})
}

func TestValues(t *testing.T) {
	t.Run("returns all values", func(t *testing.T) {
		m := map[string]int{"a": 1, "b": 2}
		values := Values(m)
		sort.Ints(values)

		if len(values) != 2 || values[0] != 1 || values[1] != 2 {
			t.Errorf("Values() = %v", values)
		}
	})

	t.Run("nil map", func(t *testing.T) {
		if values := Values[string, int](nil); values != nil {
			t.Errorf("Values(nil) = %v, want nil", values)
		}
	})
}
