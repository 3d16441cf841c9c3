// File: validationx.go
// Title: Core Validation Utilities
// Description: Implements the input validation functions shared across the
//              engine: cached regular-expression pattern validation built on
//              the core validation framework.
// Version: v0.1.0
// Created: 2025-01-25
// Modified: 2025-01-25
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive validation utilities

package validationx

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/bevalc-intelligence/cola-engine/foundation/core/validation"
)

// Regex cache for compiled patterns to avoid recompilation
var (
	regexCache = make(map[string]*regexp.Regexp)
	regexMu    sync.RWMutex
)

// getCompiledRegex returns a cached compiled regex or compiles and caches it
func getCompiledRegex(pattern string) (*regexp.Regexp, error) {
	regexMu.RLock()
	if regex, exists := regexCache[pattern]; exists {
		regexMu.RUnlock()
		return regex, nil
	}
	regexMu.RUnlock()

	// Compile and cache
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexMu.Lock()
	regexCache[pattern] = regex
	regexMu.Unlock()

	return regex, nil
}

// Type aliases for backwards compatibility and convenience
type (
	// ValidationResult is an alias to the core validation result type
	ValidationResult = validation.ValidationResult
	// ValidationError is an alias to the core validation error type
	ValidationError = validation.ValidationError
	// ValidatorChain is an alias to the core validator chain type
	ValidatorChain = validation.ValidatorChain
)

// NewValidatorChain creates a new validator chain using the core framework
func NewValidatorChain(name string) *ValidatorChain {
	return validation.NewValidatorChain(name)
}

// ===============================
// Pattern Validation Functions
// ===============================

// Pattern validates that string matches a regular expression
func Pattern(pattern string) validation.ValidatorFunc {
	return func(value interface{}) validation.ValidationResult {
		str, ok := value.(string)
		if !ok {
			return validation.NewValidationError(validation.CodeType, "value must be a string")
		}

		regex, err := getCompiledRegex(pattern)
		if err != nil {
			return validation.NewValidationError(validation.CodePattern, fmt.Sprintf("invalid pattern: %v", err))
		}

		if !regex.MatchString(str) {
			return validation.NewValidationError(validation.CodePattern, "does not match required pattern")
		}

		return validation.NewValidationResult()
	}
}
