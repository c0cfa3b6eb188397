// Package vector provides the fixed-length resource vector type used
// throughout bankergo.
//
// A Vector holds one non-negative count per resource type. The number of
// resource types is fixed for the lifetime of an allocator; every vector
// crossing the public API is validated against that length before any lock
// is taken.
package vector

import (
	"fmt"
	"strings"
)

// Vector is an ordered sequence of per-type resource counts.
type Vector []int64

// ErrLengthMismatch indicates a vector whose length does not match the
// configured resource-type count.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("resource vector length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrNegativeQuantity indicates a negative component in a vector that must be
// non-negative.
type ErrNegativeQuantity struct {
	Index int
	Value int64
}

func (e *ErrNegativeQuantity) Error() string {
	return fmt.Sprintf("negative resource quantity %d at index %d", e.Value, e.Index)
}

// New returns a zero vector with r resource types.
func New(r int) Vector {
	return make(Vector, r)
}

// Of builds a vector from the given counts. It copies its argument.
func Of(counts ...int64) Vector {
	v := make(Vector, len(counts))
	copy(v, counts)
	return v
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Validate checks that v has length r and no negative components.
func (v Vector) Validate(r int) error {
	if len(v) != r {
		return &ErrLengthMismatch{Expected: r, Actual: len(v)}
	}
	for i, n := range v {
		if n < 0 {
			return &ErrNegativeQuantity{Index: i, Value: n}
		}
	}
	return nil
}

// Add returns v + o componentwise in a new vector.
// Both vectors must have the same length.
func (v Vector) Add(o Vector) Vector {
	out := v.Clone()
	out.AddInPlace(o)
	return out
}

// Sub returns v - o componentwise in a new vector.
// Both vectors must have the same length.
func (v Vector) Sub(o Vector) Vector {
	out := v.Clone()
	out.SubInPlace(o)
	return out
}

// AddInPlace adds o into v componentwise.
func (v Vector) AddInPlace(o Vector) {
	for i := range v {
		v[i] += o[i]
	}
}

// SubInPlace subtracts o from v componentwise.
func (v Vector) SubInPlace(o Vector) {
	for i := range v {
		v[i] -= o[i]
	}
}

// DominatedBy reports whether v ≤ o componentwise.
func (v Vector) DominatedBy(o Vector) bool {
	for i := range v {
		if v[i] > o[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every component of v is zero.
func (v Vector) IsZero() bool {
	for _, n := range v {
		if n != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether v and o are the same length with identical components.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders v as "[a b c]".
func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, n := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", n)
	}
	sb.WriteByte(']')
	return sb.String()
}
