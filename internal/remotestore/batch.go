package remotestore

import "github.com/bevalc-intelligence/cola-engine/foundation/utils/slicex"

// Chunk splits items into slices of at most size, preserving order. The
// full-sync path chunks at 25,000 rows per statement batch; incremental
// sync chunks at 50-500 depending on statement size.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	return slicex.Chunk(items, size)
}

const (
	// FullSyncChunkSize is the row count per INSERT batch during a full resync.
	FullSyncChunkSize = 25000
	// IncrementalSyncMinChunk is the lower bound for incremental batch size.
	IncrementalSyncMinChunk = 50
	// IncrementalSyncMaxChunk is the upper bound for incremental batch size.
	IncrementalSyncMaxChunk = 500
)
