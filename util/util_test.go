package util

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/bankergo/vector"
)

func TestGrowthVector(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.GrowthVector(3, 2)

	assert.Equal(t, 3, len(v))
	for i := range v {
		assert.GreaterOrEqual(t, v[i], int64(0))
		assert.LessOrEqual(t, v[i], int64(2))
	}
}

func TestRequestVector(t *testing.T) {
	rng := NewRNG(4711)
	limit := vector.Of(5, 0, 2)

	for i := 0; i < 32; i++ {
		v := rng.RequestVector(limit)
		assert.True(t, v.DominatedBy(limit))
		assert.NoError(t, v.Validate(3))
	}
}

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42).GrowthVector(4, 10)
	b := NewRNG(42).GrowthVector(4, 10)
	assert.Equal(t, a, b)
}
