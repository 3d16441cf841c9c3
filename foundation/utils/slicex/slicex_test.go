// File: slicex_test.go
// Title: Slice Utilities Tests
// Description: Test suite for the slicex utility functions including unit
//              tests and edge cases.
// Version: v0.1.0
// Created: 2025-01-25
// Modified: 2025-01-25
//
// Change History:
// - 2025-01-25 v0.1.0: Initial test implementation with comprehensive coverage

package slicex

import (
	"strconv"
	"testing"
)

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ===============================
// Core Transformation Tests
// ===============================

func TestFilter(t *testing.T) {
	t.Run("filter even numbers", func(t *testing.T) {
		input := []int{1, 2, 3, 4, 5, 6}
		result := Filter(input, func(x int) bool { return x%2 == 0 })
		expected := []int{2, 4, 6}

		if !equalSlices(result, expected) {
			t.Errorf("Filter() = %v, want %v", result, expected)
		}
	})

	t.Run("nil slice", func(t *testing.T) {
		if result := Filter[int](nil, func(x int) bool { return true }); result != nil {
			t.Errorf("Filter(nil) = %v, want nil", result)
		}
	})

	t.Run("nil predicate", func(t *testing.T) {
		if result := Filter([]int{1, 2}, nil); result != nil {
			t.Errorf("Filter with nil predicate = %v, want nil", result)
		}
	})
}

func TestMap(t *testing.T) {
	t.Run("int to string", func(t *testing.T) {
		input := []int{1, 2, 3}
		result := Map(input, strconv.Itoa)
		expected := []string{"1", "2", "3"}

		if !equalSlices(result, expected) {
			t.Errorf("Map() = %v, want %v", result, expected)
		}
	})

	t.Run("nil slice", func(t *testing.T) {
		if result := Map[int, string](nil, strconv.Itoa); result != nil {
			t.Errorf("Map(nil) = %v, want nil", result)
		}
	})
}

// ===============================
// Manipulation Tests
// ===============================

func TestChunk(t *testing.T) {
	t.Run("even split", func(t *testing.T) {
		result := Chunk([]int{1, 2, 3, 4}, 2)
		if len(result) != 2 || !equalSlices(result[0], []int{1, 2}) || !equalSlices(result[1], []int{3, 4}) {
			t.Errorf("Chunk() = %v", result)
		}
	})

	t.Run("remainder chunk", func(t *testing.T) {
		result := Chunk([]int{1, 2, 3, 4, 5}, 2)
		if len(result) != 3 || !equalSlices(result[2], []int{5}) {
			t.Errorf("Chunk() = %v", result)
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		if result := Chunk([]int{1, 2}, 0); result != nil {
			t.Errorf("Chunk(size=0) = %v, want nil", result)
		}
	})
}

func TestUnique(t *testing.T) {
	t.Run("removes duplicates preserving order", func(t *testing.T) {
		result := Unique([]int{3, 1, 3, 2, 1})
		expected := []int{3, 1, 2}

		if !equalSlices(result, expected) {
			t.Errorf("Unique() = %v, want %v", result, expected)
		}
	})

	t.Run("nil slice", func(t *testing.T) {
		if result := Unique[int](nil); result != nil {
			t.Errorf("Unique(nil) = %v, want nil", result)
		}
	})
}

func TestClone(t *testing.T) {
	input := []int{1, 2, 3}
	result := Clone(input)
	result[0] = 99

	if input[0] != 1 {
		t.Errorf("Clone() shares backing array with source")
	}
}

// ===============================
// Aggregation Tests
// ===============================

func TestMin(t *testing.T) {
	t.Run("finds minimum", func(t *testing.T) {
		min, ok := Min([]int{7, 3, 9})
		if !ok || min != 3 {
			t.Errorf("Min() = (%v, %v), want (3, true)", min, ok)
		}
	})

	t.Run("empty slice", func(t *testing.T) {
		_, ok := Min([]int{})
		if ok {
			t.Errorf("Min(empty) ok = true, want false")
		}
	})
}

// ===============================
// Advanced Operation Tests
// ===============================

func TestGroupBy(t *testing.T) {
	input := []string{"apple", "avocado", "banana"}
	result := GroupBy(input, func(s string) byte { return s[0] })

	if len(result['a']) != 2 || len(result['b']) != 1 {
		t.Errorf("GroupBy() = %v", result)
	}
}

func TestSortBy(t *testing.T) {
	input := []int{3, 1, 2}
	result := SortBy(input, func(a, b int) bool { return a < b })
	expected := []int{1, 2, 3}

	if !equalSlices(result, expected) {
		t.Errorf("SortBy() = %v, want %v", result, expected)
	}
	if !equalSlices(input, []int{3, 1, 2}) {
		t.Errorf("SortBy() mutated its input: %v", input)
	}
}
