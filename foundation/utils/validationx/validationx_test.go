// File: validationx_test.go
// Title: Validation Utilities Tests
// Description: Test suite for the validationx utility functions.
// Version: v0.1.0
// Created: 2025-01-25
// Modified: 2025-01-25
//
// Change History:
// - 2025-01-25 v0.1.0: Initial test implementation

package validationx

import "testing"

func TestPattern(t *testing.T) {
	digits := Pattern(`^[0-9]{14}$`)

	t.Run("matching value", func(t *testing.T) {
		result := digits("12345678901234")
		if !result.Valid {
			t.Errorf("expected valid result, got errors: %+v", result.Errors)
		}
	})

	t.Run("non-matching value", func(t *testing.T) {
		result := digits("not-digits")
		if result.Valid {
			t.Errorf("expected invalid result")
		}
	})

	t.Run("non-string value", func(t *testing.T) {
		result := digits(42)
		if result.Valid {
			t.Errorf("expected invalid result for non-string input")
		}
	})

	t.Run("invalid pattern", func(t *testing.T) {
		broken := Pattern(`[`)
		result := broken("anything")
		if result.Valid {
			t.Errorf("expected invalid result for broken pattern")
		}
	})
}

func TestPatternCachesCompiledRegex(t *testing.T) {
	p := `^cache-test-[a-z]+$`
	first := Pattern(p)
	second := Pattern(p)

	if !first("cache-test-abc").Valid || !second("cache-test-xyz").Valid {
		t.Errorf("cached pattern no longer matches")
	}

	regexMu.RLock()
	_, cached := regexCache[p]
	regexMu.RUnlock()
	if !cached {
		t.Errorf("pattern %q not cached after use", p)
	}
}
