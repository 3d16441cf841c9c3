// Package filex implements the file operation utilities shared across the
// engine.
//
// Package: filex
// Title: Extended File Operations for Go
// Description: This package provides file and directory operation utilities:
//              directory creation with wrapped, contextual errors, existence
//              checks, and path manipulation helpers.
// Version: v0.1.0
// Created: 2025-01-25
// Modified: 2025-01-26
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2025-01-26 v0.1.1: Trimmed to the exercised surface
package filex
