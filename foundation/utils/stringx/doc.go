// File: doc.go
// Title: Package Documentation for stringx
// Description: Package stringx provides extended string operations: blank and
//              empty checks used by configuration validation, and case
//              conversion helpers.
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-01-26
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core string utilities
// - 2025-01-26 v0.2.0: Trimmed to the exercised surface

// Package stringx provides extended string operations.
//
// The package focuses on Unicode safety: IsBlank treats any run of Unicode
// whitespace as blank, and ToKebabCase lowers camelCase, PascalCase,
// snake_case, and spaced input to hyphenated form.
package stringx
