// File: doc.go
// Title: Package Documentation for mapx
// Description: Package mapx provides extended functionality for working with
//              maps in Go: key and value extraction with type-safe generic
//              implementations.
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-01-26
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core map utilities
// - 2025-01-26 v0.2.0: Trimmed to the exercised surface

// Package mapx provides extended functionality for working with maps in Go.
//
// All functions treat nil inputs as empty and never mutate their arguments.
// Key order follows the map's iteration order; callers needing determinism
// sort the result themselves.
package mapx
