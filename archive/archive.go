// Package archive persists allocator snapshots through a BlobStore and
// tracks the latest one with a checkpoint pointer.
//
// Snapshot blobs are immutable and named by version
// ("snapshots/000042.bin"); the checkpoint pointer is the only mutable
// piece of state and is advanced with a conditional write, so concurrent
// archivers never overwrite each other's pointer.
package archive

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bankergo/blobstore"
)

// ErrConcurrentUpdate is returned when another archiver committed the same
// checkpoint version first.
var ErrConcurrentUpdate = errors.New("concurrent checkpoint update detected")

// ErrNoSnapshot is returned by Latest when nothing has been archived yet.
var ErrNoSnapshot = errors.New("no archived snapshot")

// CheckpointStore tracks the latest archived snapshot.
type CheckpointStore interface {
	// Latest returns the most recently committed snapshot name and its
	// version. Version 0 with an empty name means none exists yet.
	Latest(ctx context.Context) (name string, version uint64, err error)

	// Advance commits name as the snapshot for version. It must fail
	// with ErrConcurrentUpdate if version was already committed.
	Advance(ctx context.Context, name string, version uint64) error
}

// Archiver writes versioned snapshot blobs and advances the checkpoint.
type Archiver struct {
	store      blobstore.BlobStore
	checkpoint CheckpointStore
	keep       int
}

// New creates an Archiver. keep bounds how many snapshot blobs are retained
// after a successful archive; zero or negative keeps everything.
func New(store blobstore.BlobStore, checkpoint CheckpointStore, keep int) *Archiver {
	return &Archiver{
		store:      store,
		checkpoint: checkpoint,
		keep:       keep,
	}
}

func snapshotName(version uint64) string {
	return fmt.Sprintf("snapshots/%06d.bin", version)
}

// Archive uploads data as the next snapshot version and advances the
// checkpoint pointer. It returns the committed name.
func (a *Archiver) Archive(ctx context.Context, data []byte) (string, error) {
	_, version, err := a.checkpoint.Latest(ctx)
	if err != nil {
		return "", err
	}
	version++
	name := snapshotName(version)

	if err := a.store.Put(ctx, name, data); err != nil {
		return "", err
	}
	if err := a.checkpoint.Advance(ctx, name, version); err != nil {
		// The blob is orphaned but harmless; a later prune removes it.
		return "", err
	}

	if a.keep > 0 {
		if err := a.prune(ctx, version); err != nil {
			// Retention is best-effort; the archive itself succeeded.
			return name, nil
		}
	}
	return name, nil
}

// Latest downloads the most recently archived snapshot.
func (a *Archiver) Latest(ctx context.Context) ([]byte, error) {
	name, version, err := a.checkpoint.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, ErrNoSnapshot
	}
	return a.store.Get(ctx, name)
}

// prune deletes snapshot blobs older than the retention window, in
// parallel.
func (a *Archiver) prune(ctx context.Context, latest uint64) error {
	if latest <= uint64(a.keep) {
		return nil
	}

	names, err := a.store.List(ctx, "snapshots/")
	if err != nil {
		return err
	}

	cutoff := snapshotName(latest - uint64(a.keep) + 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		if name >= cutoff {
			continue
		}
		name := name
		g.Go(func() error {
			return a.store.Delete(ctx, name)
		})
	}
	return g.Wait()
}
