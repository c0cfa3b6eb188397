package util

import (
	"math/rand"

	"github.com/hupe1980/bankergo/vector"
)

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// GrowthVector returns a random capacity delta with the given number of
// resource types, each component drawn uniformly from [0, maxPerType].
func (r *RNG) GrowthVector(types int, maxPerType int64) vector.Vector {
	v := vector.New(types)
	for i := range v {
		v[i] = r.rand.Int63n(maxPerType + 1)
	}
	return v
}

// RequestVector returns a random request bounded componentwise by limit.
// Useful for simulations and stress tests.
func (r *RNG) RequestVector(limit vector.Vector) vector.Vector {
	v := vector.New(len(limit))
	for i := range v {
		if limit[i] > 0 {
			v[i] = r.rand.Int63n(limit[i] + 1)
		}
	}
	return v
}
