// Package journal provides an append-only log of allocator mutations.
//
// Every committed grant, release, and capacity growth is appended as one
// binary entry. On restart the journal is replayed in sequence order to
// rebuild the allocator's allocations and capacity. Appends happen inside
// the arbiter's critical section, so journal order equals the global
// serialization order of pool mutations.
package journal

// SyncMode defines the fsync behavior for journal writes.
type SyncMode int

const (
	// SyncAlways performs an fsync after every append. Slowest but no
	// committed grant is lost on crash.
	SyncAlways SyncMode = iota

	// SyncNever leaves flushing to the OS. Fastest; a crash may lose the
	// tail of the journal.
	SyncNever
)

// OpType represents the type of operation recorded in the journal.
type OpType uint8

const (
	// OpGrant records a committed resource grant to a claimant.
	OpGrant OpType = iota
	// OpRelease records a release of resources by a claimant.
	OpRelease
	// OpGrow records a capacity growth of the pool.
	OpGrow
)

// Entry is a single journal record.
type Entry struct {
	SeqNum   uint64
	Type     OpType
	Claimant int32 // -1 for OpGrow
	Vector   []int64
}

// Options contains configuration for the journal.
type Options struct {
	// SyncMode controls fsync behavior. Default is SyncAlways.
	SyncMode SyncMode

	// Compress enables zstd compression of the entry stream.
	Compress bool

	// CompressionLevel sets the zstd level when Compress is enabled.
	// Default is 3.
	CompressionLevel int
}

// DefaultOptions returns default journal options.
func DefaultOptions() Options {
	return Options{
		SyncMode:         SyncAlways,
		Compress:         false,
		CompressionLevel: 3,
	}
}
