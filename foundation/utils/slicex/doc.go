// Package slicex implements the generic slice utilities shared across the
// engine.
//
// Package: slicex
// Title: Extended Slice Utilities for Go
// Description: This package provides utility functions for working with Go
//              slices: functional transformation (Filter, Map), chunking and
//              deduplication (Chunk, Unique), grouping and ordering (GroupBy,
//              SortBy, Min), and defensive copying (Clone). All functions are
//              generic, treat nil inputs as empty, and never mutate their
//              arguments.
// Version: v0.1.0
// Created: 2025-01-25
// Modified: 2025-01-26
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2025-01-26 v0.1.1: Trimmed to the exercised surface
package slicex
