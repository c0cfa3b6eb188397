package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.journal")

	j, err := Open(path, 0)
	require.NoError(t, err)

	_, err = j.Append(OpGrant, 1, []int64{1, 0, 2})
	require.NoError(t, err)
	_, err = j.Append(OpGrow, -1, []int64{0, 1, 1})
	require.NoError(t, err)
	seq, err := j.Append(OpRelease, 1, []int64{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)

	require.NoError(t, j.Close())

	var entries []Entry
	lastSeq, err := Replay(path, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), lastSeq)

	require.Len(t, entries, 3)
	assert.Equal(t, OpGrant, entries[0].Type)
	assert.Equal(t, int32(1), entries[0].Claimant)
	assert.Equal(t, []int64{1, 0, 2}, entries[0].Vector)
	assert.Equal(t, OpGrow, entries[1].Type)
	assert.Equal(t, int32(-1), entries[1].Claimant)
	assert.Equal(t, OpRelease, entries[2].Type)
}

func TestReplay_Missing(t *testing.T) {
	lastSeq, err := Replay(filepath.Join(t.TempDir(), "nope.journal"), func(Entry) error {
		t.Fatal("callback must not run")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, lastSeq)
}

func TestReopenContinuesSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.journal")

	j, err := Open(path, 0)
	require.NoError(t, err)
	_, err = j.Append(OpGrant, 0, []int64{1})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	lastSeq, err := Replay(path, func(Entry) error { return nil })
	require.NoError(t, err)

	j, err = Open(path, lastSeq)
	require.NoError(t, err)
	seq, err := j.Append(OpGrant, 1, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	require.NoError(t, j.Close())

	var seqs []uint64
	_, err = Replay(path, func(e Entry) error {
		seqs = append(seqs, e.SeqNum)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, seqs)
}

func TestCompressedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.journal")
	compress := func(o *Options) { o.Compress = true }

	j, err := Open(path, 0, compress)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		_, err := j.Append(OpGrant, int32(i%5), []int64{int64(i), 2, 3})
		require.NoError(t, err)
	}
	require.NoError(t, j.Close())

	var count int
	lastSeq, err := Replay(path, func(e Entry) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 100, count)
	assert.Equal(t, uint64(100), lastSeq)

	// Opening a compressed journal without the option must fail loudly.
	_, err = Open(path, lastSeq)
	assert.Error(t, err)
}

func TestReplay_TornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.journal")

	j, err := Open(path, 0)
	require.NoError(t, err)
	_, err = j.Append(OpGrant, 2, []int64{3, 0, 2})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	// Simulate a crash mid-append: a frame header with no payload.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x20, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var count int
	lastSeq, err := Replay(path, func(Entry) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, uint64(1), lastSeq)
}

func TestReplay_CorruptEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.journal")

	j, err := Open(path, 0)
	require.NoError(t, err)
	_, err = j.Append(OpGrant, 0, []int64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	// Flip a byte inside the payload of the first entry.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Replay(path, func(Entry) error { return nil })
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestAppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.journal")

	j, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close()) // idempotent

	_, err = j.Append(OpGrant, 0, []int64{1})
	assert.Error(t, err)
}
