// Package claim holds the per-claimant bookkeeping for bankergo.
//
// A Claimant is one participant in the allocator: it declares an immutable
// maximum claim at construction and carries the currently allocated counts
// plus the derived remaining need. Need is maintained transactionally
// alongside the allocation so the arbiter's hot path never recomputes it.
package claim

import (
	"fmt"
	"sync"

	"github.com/hupe1980/bankergo/vector"
)

// Claimant is a single resource consumer. All mutation goes through the
// allocator's commit path while both the pool lock and the claimant's own
// lock are held; the zero-value exported snapshot methods take the claimant
// lock only.
type Claimant struct {
	mu        sync.Mutex
	id        int
	max       vector.Vector
	allocated vector.Vector
	need      vector.Vector
}

// State is an immutable copy of a claimant's vectors, suitable for the
// safety oracle and for display.
type State struct {
	ID        int           `json:"id"`
	Max       vector.Vector `json:"max"`
	Allocated vector.Vector `json:"allocated"`
	Need      vector.Vector `json:"need"`
}

// New creates a claimant with the given maximum claim and initial
// allocation. The initial allocation must be componentwise ≤ max.
func New(id int, max, allocated vector.Vector) (*Claimant, error) {
	r := len(max)
	if err := max.Validate(r); err != nil {
		return nil, fmt.Errorf("claimant %d max claim: %w", id, err)
	}
	if err := allocated.Validate(r); err != nil {
		return nil, fmt.Errorf("claimant %d allocation: %w", id, err)
	}
	if !allocated.DominatedBy(max) {
		return nil, fmt.Errorf("claimant %d: initial allocation %s exceeds max claim %s", id, allocated, max)
	}

	return &Claimant{
		id:        id,
		max:       max.Clone(),
		allocated: allocated.Clone(),
		need:      max.Sub(allocated),
	}, nil
}

// ID returns the claimant's stable identifier.
func (c *Claimant) ID() int { return c.id }

// Lock acquires the claimant's lock. The allocator acquires the pool lock
// first at every call site; see the arbiter for the lock-order contract.
func (c *Claimant) Lock() { c.mu.Lock() }

// Unlock releases the claimant's lock.
func (c *Claimant) Unlock() { c.mu.Unlock() }

// Grant moves req from need to allocated. Caller must hold the lock and
// have validated req ≤ need.
func (c *Claimant) Grant(req vector.Vector) {
	c.allocated.AddInPlace(req)
	c.need.SubInPlace(req)
}

// Revert is the exact arithmetic inverse of Grant. Caller must hold the
// lock. It is pure integer arithmetic with no failure points, so a rollback
// can never leave a component half-reverted.
func (c *Claimant) Revert(req vector.Vector) {
	c.allocated.SubInPlace(req)
	c.need.AddInPlace(req)
}

// Release moves rel from allocated back to need. Caller must hold the lock
// and have validated rel ≤ allocated.
func (c *Claimant) Release(rel vector.Vector) {
	c.allocated.SubInPlace(rel)
	c.need.AddInPlace(rel)
}

// CanGrant reports whether req is componentwise within the remaining need.
// Caller must hold the lock.
func (c *Claimant) CanGrant(req vector.Vector) bool {
	return req.DominatedBy(c.need)
}

// CanRelease reports whether rel is componentwise within the current
// allocation. Caller must hold the lock.
func (c *Claimant) CanRelease(rel vector.Vector) bool {
	return rel.DominatedBy(c.allocated)
}

// StateLocked copies the claimant's vectors without taking the lock. Caller
// must hold the lock (or the pool lock on a path where all mutators do too).
func (c *Claimant) StateLocked() State {
	return State{
		ID:        c.id,
		Max:       c.max.Clone(),
		Allocated: c.allocated.Clone(),
		Need:      c.need.Clone(),
	}
}

// Snapshot copies the claimant's vectors under its lock.
func (c *Claimant) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.StateLocked()
}

// AllocatedLocked returns the live allocation vector without copying.
// Caller must hold the lock and must not retain or mutate the slice.
func (c *Claimant) AllocatedLocked() vector.Vector { return c.allocated }

// NeedLocked returns the live need vector without copying. Caller must hold
// the lock and must not retain or mutate the slice.
func (c *Claimant) NeedLocked() vector.Vector { return c.need }
