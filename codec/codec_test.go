package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		got, ok := ByName(c.Name())
		require.True(t, ok, c.Name())
		assert.Equal(t, c.Name(), got.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	type payload struct {
		Available []int64 `json:"available"`
		Seq       uint64  `json:"seq"`
	}
	in := payload{Available: []int64{3, 3, 2}, Seq: 7}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b, err := c.Marshal(in)
		require.NoError(t, err, c.Name())

		var out payload
		require.NoError(t, c.Unmarshal(b, &out), c.Name())
		assert.Equal(t, in, out)
	}
}
