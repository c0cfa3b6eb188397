package bankergo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bankergo/archive"
	"github.com/hupe1980/bankergo/blobstore"
	"github.com/hupe1980/bankergo/persist"
	"github.com/hupe1980/bankergo/vector"
)

func TestSnapshot_SaveLoad(t *testing.T) {
	ctx := context.Background()
	a := classicAllocator(t)

	require.NoError(t, a.Request(ctx, 1, vector.Of(1, 0, 2)))

	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, a.SaveSnapshot(path, persist.Options{Compression: persist.CompressionZstd}))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, a.Snapshot(), snap)
}

func TestNewFromSnapshot(t *testing.T) {
	ctx := context.Background()
	a := classicAllocator(t)

	require.NoError(t, a.Request(ctx, 1, vector.Of(1, 0, 2)))
	require.NoError(t, a.Release(ctx, 4, vector.Of(0, 0, 1)))
	want := a.Snapshot()

	b, err := NewFromSnapshot(want, WithMonitorInterval(0))
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, want, b.Snapshot())

	// The restored allocator arbitrates exactly like the original.
	assert.ErrorIs(t, b.Request(ctx, 3, vector.Of(1, 0, 0)), ErrExceedsClaim)
	require.NoError(t, b.Request(ctx, 3, vector.Of(0, 1, 0)))
}

func TestNewFromSnapshot_Inconsistent(t *testing.T) {
	snap := classicAllocator(t).Snapshot()
	snap.Available[0]++ // breaks conservation

	_, err := NewFromSnapshot(snap, WithMonitorInterval(0))
	assert.Error(t, err)
}

func TestArchiveSnapshot(t *testing.T) {
	ctx := context.Background()
	a := classicAllocator(t)

	store := blobstore.NewMemoryStore()
	ar := archive.New(store, archive.NewBlobCheckpointStore(store), 3)

	name, err := a.ArchiveSnapshot(ctx, ar, persist.Options{Compression: persist.CompressionLZ4})
	require.NoError(t, err)
	assert.Equal(t, "snapshots/000001.bin", name)

	require.NoError(t, a.Request(ctx, 1, vector.Of(1, 0, 2)))
	_, err = a.ArchiveSnapshot(ctx, ar, persist.Options{Compression: persist.CompressionLZ4})
	require.NoError(t, err)

	// The latest archived snapshot round-trips to the current state.
	data, err := ar.Latest(ctx)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, persist.Decode(data, &snap))
	assert.Equal(t, a.Snapshot(), snap)
}
