// File: filex.go
// Title: Core File Utilities
// Description: Implements the file operation utilities shared across the
//              engine: path manipulation and directory management with
//              wrapped, contextual errors.
// Version: v0.1.0
// Created: 2025-01-25
// Modified: 2025-01-25
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive file utilities

package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// ===============================
// Directory Operations
// ===============================

// MkdirAll creates a directory and all necessary parent directories
func MkdirAll(path string, perm os.FileMode) error {
	err := os.MkdirAll(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Exists checks whether the path exists on disk
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ===============================
// Path Operations
// ===============================

// Dir returns the directory containing the file
func Dir(path string) string {
	return filepath.Dir(path)
}

// Base returns the last element of the path
func Base(path string) string {
	return filepath.Base(path)
}
