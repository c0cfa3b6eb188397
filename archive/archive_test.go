package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bankergo/blobstore"
)

func newArchiver(keep int) (*Archiver, *blobstore.MemoryStore) {
	store := blobstore.NewMemoryStore()
	return New(store, NewBlobCheckpointStore(store), keep), store
}

func TestArchiveLatest(t *testing.T) {
	ctx := context.Background()
	a, _ := newArchiver(0)

	_, err := a.Latest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	name, err := a.Archive(ctx, []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, "snapshots/000001.bin", name)

	name, err = a.Archive(ctx, []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, "snapshots/000002.bin", name)

	data, err := a.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestArchive_Retention(t *testing.T) {
	ctx := context.Background()
	a, store := newArchiver(2)

	for i := 0; i < 5; i++ {
		_, err := a.Archive(ctx, []byte{byte(i)})
		require.NoError(t, err)
	}

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/000004.bin", "snapshots/000005.bin"}, names)

	data, err := a.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
}

func TestArchive_RetentionLargerThanHistory(t *testing.T) {
	ctx := context.Background()
	a, store := newArchiver(10)

	for i := 0; i < 3; i++ {
		_, err := a.Archive(ctx, []byte{byte(i)})
		require.NoError(t, err)
	}

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestBlobCheckpointStore(t *testing.T) {
	ctx := context.Background()
	cp := NewBlobCheckpointStore(blobstore.NewMemoryStore())

	name, version, err := cp.Latest(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Zero(t, version)

	require.NoError(t, cp.Advance(ctx, "snapshots/000001.bin", 1))

	// Skipping or repeating a version is a concurrent update.
	assert.ErrorIs(t, cp.Advance(ctx, "snapshots/000001.bin", 1), ErrConcurrentUpdate)
	assert.ErrorIs(t, cp.Advance(ctx, "snapshots/000003.bin", 3), ErrConcurrentUpdate)

	name, version, err = cp.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshots/000001.bin", name)
	assert.Equal(t, uint64(1), version)
}
