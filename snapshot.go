package bankergo

import (
	"context"
	"fmt"

	"github.com/hupe1980/bankergo/archive"
	"github.com/hupe1980/bankergo/persist"
)

// SaveSnapshot writes the current allocator state as a snapshot file.
//
// The snapshot captures capacity and allocations, not the request history:
// restoring it yields an allocator in the same externally observable state.
func (a *Allocator) SaveSnapshot(path string, opts persist.Options) error {
	return persist.Save(path, a.Snapshot(), opts)
}

// ArchiveSnapshot encodes the current state and archives it through ar,
// returning the committed blob name.
func (a *Allocator) ArchiveSnapshot(ctx context.Context, ar *archive.Archiver, opts persist.Options) (string, error) {
	data, err := persist.Encode(a.Snapshot(), opts)
	if err != nil {
		return "", err
	}
	return ar.Archive(ctx, data)
}

// LoadSnapshot reads a snapshot file written by SaveSnapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	if err := persist.Load(path, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// NewFromSnapshot constructs an allocator resuming from a snapshot.
func NewFromSnapshot(snap Snapshot, optFns ...Option) (*Allocator, error) {
	claims := make([]ClaimSpec, len(snap.Claimants))
	for i, st := range snap.Claimants {
		claims[i] = ClaimSpec{ID: st.ID, Max: st.Max, Allocated: st.Allocated}
	}

	a, err := New(snap.Total, claims, optFns...)
	if err != nil {
		return nil, err
	}

	// Sanity: the snapshot's own conservation must reproduce.
	if got := a.Snapshot(); !got.Available.Equal(snap.Available) {
		a.Close()
		return nil, fmt.Errorf("snapshot inconsistent: available %s does not match reconstructed %s", snap.Available, got.Available)
	}
	return a, nil
}
