// Package pool holds the shared resource pool for bankergo.
//
// The pool lock is the global serialization point: every request, release,
// and capacity change holds it, which is what lets the safety oracle and the
// consistency monitor read a globally consistent snapshot.
package pool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/bankergo/vector"
)

// Pool tracks total capacity and currently unallocated units per resource
// type. Capacity only grows; it is never destroyed during the allocator's
// lifetime.
type Pool struct {
	mu        sync.Mutex
	total     vector.Vector
	available vector.Vector
}

// New creates a pool with the given initial capacity. All units start
// available.
func New(total vector.Vector) (*Pool, error) {
	if err := total.Validate(len(total)); err != nil {
		return nil, fmt.Errorf("pool capacity: %w", err)
	}
	return &Pool{
		total:     total.Clone(),
		available: total.Clone(),
	}, nil
}

// Types returns the number of resource types.
func (p *Pool) Types() int { return len(p.total) }

// Lock acquires the pool lock. The allocator takes this lock before any
// claimant lock; see the arbiter for the lock-order contract.
func (p *Pool) Lock() { p.mu.Lock() }

// Unlock releases the pool lock.
func (p *Pool) Unlock() { p.mu.Unlock() }

// Grow increments total and available by delta componentwise under the pool
// lock. Capacity growth never shrinks the pool and, once delta is validated
// by the caller, never fails.
func (p *Pool) Grow(delta vector.Vector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GrowLocked(delta)
}

// GrowLocked is Grow for callers already holding the pool lock.
func (p *Pool) GrowLocked(delta vector.Vector) {
	p.total.AddInPlace(delta)
	p.available.AddInPlace(delta)
}

// ReserveLocked removes req from the available units. Caller must hold the
// lock and have validated req ≤ available.
func (p *Pool) ReserveLocked(req vector.Vector) {
	p.available.SubInPlace(req)
}

// ReturnLocked adds rel back to the available units. Caller must hold the
// lock. It is the exact arithmetic inverse of ReserveLocked.
func (p *Pool) ReturnLocked(rel vector.Vector) {
	p.available.AddInPlace(rel)
}

// CanReserveLocked reports whether req is componentwise within the available
// units. Caller must hold the lock.
func (p *Pool) CanReserveLocked(req vector.Vector) bool {
	return req.DominatedBy(p.available)
}

// AvailableLocked returns the live available vector without copying. Caller
// must hold the lock and must not retain or mutate the slice.
func (p *Pool) AvailableLocked() vector.Vector { return p.available }

// TotalLocked returns the live total vector without copying. Caller must
// hold the lock and must not retain or mutate the slice.
func (p *Pool) TotalLocked() vector.Vector { return p.total }

// Snapshot copies total and available under the pool lock.
func (p *Pool) Snapshot() (total, available vector.Vector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total.Clone(), p.available.Clone()
}
