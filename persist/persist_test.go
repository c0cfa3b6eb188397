package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bankergo/codec"
)

type testSnapshot struct {
	Total     []int64   `json:"total"`
	Available []int64   `json:"available"`
	Allocated [][]int64 `json:"allocated"`
}

func sample() testSnapshot {
	return testSnapshot{
		Total:     []int64{10, 5, 7},
		Available: []int64{3, 3, 2},
		Allocated: [][]int64{{0, 1, 0}, {2, 0, 0}, {3, 0, 2}, {2, 1, 1}, {0, 0, 2}},
	}
}

func TestSaveLoad(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "default"},
		{name: "stdlib json", opts: Options{Codec: codec.JSON{}}},
		{name: "zstd", opts: Options{Compression: CompressionZstd}},
		{name: "lz4", opts: Options{Compression: CompressionLZ4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.snapshot")
			require.NoError(t, Save(path, sample(), tt.opts))

			var got testSnapshot
			require.NoError(t, Load(path, &got))
			assert.Equal(t, sample(), got)

			// No temp file left behind.
			_, err := os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snapshot")
	require.NoError(t, Save(path, sample(), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Flip a payload byte past the header, before the trailing checksum.
	data[len(data)-40] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var got testSnapshot
	assert.ErrorIs(t, Load(path, &got), ErrChecksum)
}

func TestLoad_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snapshot")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot at all"), 0o644))

	var got testSnapshot
	assert.Error(t, Load(path, &got))
}

func TestLoad_Missing(t *testing.T) {
	var got testSnapshot
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope"), &got))
}
