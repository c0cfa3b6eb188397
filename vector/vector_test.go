package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       Vector
		r       int
		wantErr bool
	}{
		{name: "ok", v: Of(1, 2, 3), r: 3},
		{name: "zero length", v: Vector{}, r: 0},
		{name: "too short", v: Of(1, 2), r: 3, wantErr: true},
		{name: "too long", v: Of(1, 2, 3, 4), r: 3, wantErr: true},
		{name: "negative", v: Of(1, -2, 3), r: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate(tt.r)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ErrorTypes(t *testing.T) {
	err := Of(1, 2).Validate(3)
	var lm *ErrLengthMismatch
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 3, lm.Expected)
	assert.Equal(t, 2, lm.Actual)

	err = Of(1, -5, 0).Validate(3)
	var nq *ErrNegativeQuantity
	require.ErrorAs(t, err, &nq)
	assert.Equal(t, 1, nq.Index)
	assert.Equal(t, int64(-5), nq.Value)
}

func TestArithmetic(t *testing.T) {
	a := Of(3, 3, 2)
	b := Of(1, 0, 2)

	sum := a.Add(b)
	assert.Equal(t, Of(4, 3, 4), sum)

	diff := a.Sub(b)
	assert.Equal(t, Of(2, 3, 0), diff)

	// Originals untouched.
	assert.Equal(t, Of(3, 3, 2), a)
	assert.Equal(t, Of(1, 0, 2), b)

	a.AddInPlace(b)
	assert.Equal(t, Of(4, 3, 4), a)
	a.SubInPlace(b)
	assert.Equal(t, Of(3, 3, 2), a)
}

func TestDominatedBy(t *testing.T) {
	assert.True(t, Of(1, 2, 2).DominatedBy(Of(1, 2, 2)))
	assert.True(t, Of(0, 0, 0).DominatedBy(Of(1, 2, 2)))
	assert.False(t, Of(2, 0, 0).DominatedBy(Of(1, 2, 2)))
}

func TestCloneIndependence(t *testing.T) {
	a := Of(1, 2, 3)
	b := a.Clone()
	b[0] = 99
	assert.Equal(t, int64(1), a[0])
}

func TestZeroAndEqual(t *testing.T) {
	assert.True(t, New(3).IsZero())
	assert.False(t, Of(0, 1, 0).IsZero())
	assert.True(t, Of(1, 2).Equal(Of(1, 2)))
	assert.False(t, Of(1, 2).Equal(Of(1, 2, 3)))
	assert.False(t, Of(1, 2).Equal(Of(2, 1)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[10 5 7]", Of(10, 5, 7).String())
	assert.Equal(t, "[]", Vector{}.String())
}
