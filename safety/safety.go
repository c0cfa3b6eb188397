// Package safety implements the Banker's algorithm safety check.
//
// The oracle is pure: it operates on copied claimant state and never mutates
// caller-owned vectors. The arbiter calls it while holding the pool lock so
// the inspected population is a globally consistent snapshot.
package safety

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/bankergo/claim"
	"github.com/hupe1980/bankergo/vector"
)

// IsSafe reports whether a state admits at least one order in which every
// claimant can reach its maximum claim and finish.
func IsSafe(states []claim.State, available vector.Vector) bool {
	_, ok := run(states, available, false)
	return ok
}

// SafeSequence returns claimant ids in an order in which all claimants can
// finish, or (nil, false) if no such order exists. Ids are recorded in
// discovery order, one full scan pass at a time; when several orders are
// valid the returned one is just the first the scan finds.
func SafeSequence(states []claim.State, available vector.Vector) ([]int, bool) {
	return run(states, available, true)
}

func run(states []claim.State, available vector.Vector, collect bool) ([]int, bool) {
	work := available.Clone()
	finished := roaring.New()

	var seq []int
	if collect {
		seq = make([]int, 0, len(states))
	}

	// Repeat full passes until a pass finds no newly finishable claimant.
	// Resource addition is commutative, so collecting every finishable
	// claimant per pass yields a valid order.
	for {
		found := false
		for i, st := range states {
			if finished.Contains(uint32(i)) {
				continue
			}
			if !st.Need.DominatedBy(work) {
				continue
			}
			// Claimant i can run to completion and hand back
			// everything it holds.
			work.AddInPlace(st.Allocated)
			finished.Add(uint32(i))
			found = true
			if collect {
				seq = append(seq, st.ID)
			}
		}
		if !found {
			break
		}
	}

	if finished.GetCardinality() != uint64(len(states)) {
		return nil, false
	}
	return seq, true
}
