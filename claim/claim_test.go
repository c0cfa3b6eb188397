package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bankergo/vector"
)

func TestNew(t *testing.T) {
	c, err := New(2, vector.Of(9, 0, 2), vector.Of(3, 0, 2))
	require.NoError(t, err)

	st := c.Snapshot()
	assert.Equal(t, 2, st.ID)
	assert.Equal(t, vector.Of(9, 0, 2), st.Max)
	assert.Equal(t, vector.Of(3, 0, 2), st.Allocated)
	assert.Equal(t, vector.Of(6, 0, 0), st.Need)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(0, vector.Of(1, 2), vector.Of(1, 2, 3))
	assert.Error(t, err)

	_, err = New(0, vector.Of(1, 2), vector.Of(-1, 0))
	assert.Error(t, err)

	// Allocation above max claim.
	_, err = New(0, vector.Of(1, 2), vector.Of(2, 0))
	assert.Error(t, err)
}

func TestGrantRevert(t *testing.T) {
	c, err := New(0, vector.Of(7, 5, 3), vector.Of(0, 1, 0))
	require.NoError(t, err)

	req := vector.Of(1, 2, 0)

	c.Lock()
	require.True(t, c.CanGrant(req))
	c.Grant(req)
	c.Unlock()

	st := c.Snapshot()
	assert.Equal(t, vector.Of(1, 3, 0), st.Allocated)
	assert.Equal(t, vector.Of(6, 2, 3), st.Need)

	c.Lock()
	c.Revert(req)
	c.Unlock()

	st = c.Snapshot()
	assert.Equal(t, vector.Of(0, 1, 0), st.Allocated)
	assert.Equal(t, vector.Of(7, 4, 3), st.Need)
}

func TestNeedDerivation(t *testing.T) {
	c, err := New(1, vector.Of(3, 2, 2), vector.Of(2, 0, 0))
	require.NoError(t, err)

	steps := []vector.Vector{
		vector.Of(1, 0, 0),
		vector.Of(0, 1, 1),
		vector.Of(0, 1, 1),
	}
	for _, req := range steps {
		c.Lock()
		require.True(t, c.CanGrant(req))
		c.Grant(req)
		c.Unlock()

		st := c.Snapshot()
		assert.Equal(t, st.Max.Sub(st.Allocated), st.Need)
	}

	// Fully satisfied claimant has zero need.
	assert.True(t, c.Snapshot().Need.IsZero())
}

func TestRelease(t *testing.T) {
	c, err := New(4, vector.Of(4, 3, 3), vector.Of(0, 0, 2))
	require.NoError(t, err)

	c.Lock()
	assert.False(t, c.CanRelease(vector.Of(1, 0, 0)))
	require.True(t, c.CanRelease(vector.Of(0, 0, 2)))
	c.Release(vector.Of(0, 0, 2))
	c.Unlock()

	st := c.Snapshot()
	assert.True(t, st.Allocated.IsZero())
	assert.Equal(t, st.Max, st.Need)
}

func TestSnapshotIndependence(t *testing.T) {
	c, err := New(0, vector.Of(2, 2), vector.Of(1, 1))
	require.NoError(t, err)

	st := c.Snapshot()
	st.Allocated[0] = 99
	assert.Equal(t, vector.Of(1, 1), c.Snapshot().Allocated)
}
