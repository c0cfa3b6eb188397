// Package blobstore abstracts where archived allocator snapshots live.
//
// Snapshots are small, immutable, write-once objects, so the interface uses
// whole-object semantics rather than ranged reads. Implementations must be
// safe for concurrent use.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations must return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blob not found")

// BlobStore stores immutable named blobs.
type BlobStore interface {
	// Put writes a blob atomically. An existing blob with the same name
	// is replaced.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a whole blob. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, in
	// lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
