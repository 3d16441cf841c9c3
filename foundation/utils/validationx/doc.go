// Package validationx implements the input validation utilities shared
// across the engine.
//
// Package: validationx
// Title: Extended Input Validation for Go
// Description: This package provides concrete validators built on the core
//              validation framework, with cached regular-expression pattern
//              matching and consistent error handling.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-01-26
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2025-01-26 v0.2.0: Trimmed to the exercised surface
package validationx
