// Package bankergo provides deadlock-avoidant resource allocation for a
// fixed population of concurrent claimants sharing a pool of multi-typed
// countable resources, using the Banker's algorithm.
//
// An Allocator never grants a request that would leave the system without a
// safe finishing order: each request is validated, speculatively applied,
// checked against the full claimant population, and committed or rolled back
// atomically. It prevents entry into unsafe states; it does not detect or
// recover from deadlock after the fact.
//
// # Quick Start
//
//	total := vector.Of(10, 5, 7)
//	alloc, err := bankergo.New(total, []bankergo.ClaimSpec{
//	    {ID: 0, Max: vector.Of(7, 5, 3), Allocated: vector.Of(0, 1, 0)},
//	    {ID: 1, Max: vector.Of(3, 2, 2), Allocated: vector.Of(2, 0, 0)},
//	})
//	if err != nil {
//	    panic(err)
//	}
//	defer alloc.Close()
//
//	if err := alloc.Request(ctx, 1, vector.Of(1, 0, 2)); err != nil {
//	    fmt.Println("denied:", bankergo.DenialReason(err))
//	}
//
// # Background Tasks
//
// A consistency monitor asserts the conservation law (per resource type,
// allocated + available == total) on a fixed cadence; a violation indicates
// a locking or logic defect, never a legitimate state. An optional capacity
// mutator grows the pool periodically:
//
//	alloc, _ := bankergo.New(total, claims,
//	    bankergo.WithCapacityGrowth(10*time.Second, nil), // random growth
//	    bankergo.WithMonitorInterval(time.Second),
//	)
//
// # Durability
//
// With a journal configured, every committed grant, release, and capacity
// change is appended to an append-only log and replayed on construction:
//
//	alloc, _ := bankergo.New(total, claims, bankergo.WithJournal("./alloc.journal"))
//
// Snapshots of the full allocator state can be saved to disk (SaveSnapshot)
// or archived to a blob store (see the archive package).
//
// # Key Properties
//
//   - Safety preservation: after every grant, a safe finishing order exists
//   - Atomic denial: a denied request leaves all state bit-for-bit unchanged
//   - Conservation: allocated + available always equals total, per type
//   - Growth monotonicity: adding capacity never makes a safe state unsafe
package bankergo
