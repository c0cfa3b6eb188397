package bankergo

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/bankergo/claim"
	"github.com/hupe1980/bankergo/journal"
	"github.com/hupe1980/bankergo/pool"
	"github.com/hupe1980/bankergo/safety"
	"github.com/hupe1980/bankergo/util"
	"github.com/hupe1980/bankergo/vector"
)

// ClaimSpec declares one claimant of the allocator's fixed population.
type ClaimSpec struct {
	// ID is the claimant's stable identifier. Must be unique.
	ID int

	// Max is the upper bound the claimant will ever hold. Fixed for the
	// allocator's lifetime.
	Max vector.Vector

	// Allocated is the initial allocation. Nil means zero. Initial
	// allocations are reserved from the pool at construction.
	Allocated vector.Vector
}

// Allocator is the safety-checked arbiter over a shared resource pool.
//
// Lock order is pool-then-claimant at every call site. Every mutation of a
// claimant's allocation happens while the pool lock is held, so holding the
// pool lock alone is sufficient to read a globally consistent snapshot of
// the whole population; the per-claimant lock additionally fences direct
// claimant snapshots taken without the pool lock.
type Allocator struct {
	p         *pool.Pool
	claimants []*claim.Claimant
	byID      map[int]*claim.Claimant
	types     int

	logger  *Logger
	metrics MetricsCollector

	jnl      *journal.Journal
	inflight *semaphore.Weighted

	monitor *monitor

	bg       *errgroup.Group
	bgCancel context.CancelFunc
	closed   atomic.Bool
}

// New creates an allocator with the given total capacity and claimant
// population. Initial allocations are reserved from the pool; the sum per
// resource type must not exceed total.
//
// If a journal is configured and its file exists, it is replayed before the
// allocator accepts requests.
func New(total vector.Vector, claims []ClaimSpec, optFns ...Option) (*Allocator, error) {
	opts := applyOptions(optFns)

	p, err := pool.New(total)
	if err != nil {
		return nil, err
	}
	types := p.Types()

	a := &Allocator{
		p:         p,
		claimants: make([]*claim.Claimant, 0, len(claims)),
		byID:      make(map[int]*claim.Claimant, len(claims)),
		types:     types,
		logger:    opts.logger,
		metrics:   opts.metricsCollector,
	}

	for _, spec := range claims {
		if _, ok := a.byID[spec.ID]; ok {
			return nil, fmt.Errorf("duplicate claimant id %d", spec.ID)
		}
		allocated := spec.Allocated
		if allocated == nil {
			allocated = vector.New(types)
		}
		if err := spec.Max.Validate(types); err != nil {
			return nil, fmt.Errorf("claimant %d max claim: %w", spec.ID, err)
		}
		c, err := claim.New(spec.ID, spec.Max, allocated)
		if err != nil {
			return nil, err
		}

		p.Lock()
		if !p.CanReserveLocked(allocated) {
			p.Unlock()
			return nil, fmt.Errorf("claimant %d: initial allocation %s exceeds available %s", spec.ID, allocated, total)
		}
		p.ReserveLocked(allocated)
		p.Unlock()

		a.claimants = append(a.claimants, c)
		a.byID[spec.ID] = c
	}

	if opts.journalPath != "" {
		if err := a.recover(opts.journalPath, opts.journalOptions); err != nil {
			return nil, err
		}
	}

	if opts.maxInflight > 0 {
		a.inflight = semaphore.NewWeighted(opts.maxInflight)
	}

	a.startBackground(opts)

	return a, nil
}

// recover replays an existing journal and opens it for appending.
func (a *Allocator) recover(path string, optFns []func(*journal.Options)) error {
	replayed := 0
	lastSeq, err := journal.Replay(path, func(e journal.Entry) error {
		replayed++
		return a.applyEntry(e)
	})
	a.logger.LogRecovery(context.Background(), replayed, err)
	if err != nil {
		return fmt.Errorf("journal recovery: %w", err)
	}

	jnl, err := journal.Open(path, lastSeq, optFns...)
	if err != nil {
		return err
	}
	a.jnl = jnl
	return nil
}

// applyEntry re-applies a committed mutation during journal replay. Safety
// is not re-checked: every replayed grant passed the check when it was
// committed, and replay happens before any concurrency exists.
func (a *Allocator) applyEntry(e journal.Entry) error {
	vec := vector.Vector(e.Vector)
	if err := vec.Validate(a.types); err != nil {
		return fmt.Errorf("journal entry %d: %w", e.SeqNum, err)
	}

	switch e.Type {
	case journal.OpGrow:
		a.p.Grow(vec)
		return nil
	case journal.OpGrant, journal.OpRelease:
		c, ok := a.byID[int(e.Claimant)]
		if !ok {
			return fmt.Errorf("journal entry %d: %w: %d", e.SeqNum, ErrUnknownClaimant, e.Claimant)
		}
		a.p.Lock()
		c.Lock()
		defer c.Unlock()
		defer a.p.Unlock()

		if e.Type == journal.OpGrant {
			if !c.CanGrant(vec) || !a.p.CanReserveLocked(vec) {
				return fmt.Errorf("journal entry %d: grant does not fit current state", e.SeqNum)
			}
			a.p.ReserveLocked(vec)
			c.Grant(vec)
		} else {
			if !c.CanRelease(vec) {
				return fmt.Errorf("journal entry %d: release exceeds allocation", e.SeqNum)
			}
			c.Release(vec)
			a.p.ReturnLocked(vec)
		}
		return nil
	default:
		return fmt.Errorf("journal entry %d: unknown op %d", e.SeqNum, e.Type)
	}
}

func (a *Allocator) startBackground(opts options) {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	a.bg = g
	a.bgCancel = cancel

	a.monitor = newMonitor(a, opts.monitorInterval)
	if opts.monitorInterval > 0 {
		g.Go(func() error {
			a.monitor.run(ctx)
			return nil
		})
	}

	if opts.growthInterval > 0 {
		fn := opts.growthFunc
		if fn == nil {
			rng := util.NewRNG(opts.growthSeed)
			fn = func() vector.Vector {
				return rng.GrowthVector(a.types, 2)
			}
		}
		m := &mutator{alloc: a, interval: opts.growthInterval, growth: fn}
		g.Go(func() error {
			m.run(ctx)
			return nil
		})
	}
}

// Types returns the number of resource types.
func (a *Allocator) Types() int { return a.types }

// Request asks for req units on behalf of the claimant. A nil return means
// the request was granted and committed. Denials (see IsDenial) leave every
// claimant's allocation and the pool bit-for-bit unchanged.
//
// The whole validate→apply→check→commit-or-rollback sequence runs under the
// pool lock and the claimant's lock, so concurrent requests serialize and
// the safety check always sees a globally consistent population.
func (a *Allocator) Request(ctx context.Context, claimantID int, req vector.Vector) error {
	start := time.Now()
	err := a.request(ctx, claimantID, req)
	a.metrics.RecordRequest(time.Since(start), err)
	a.logger.LogRequest(ctx, claimantID, req, err)
	return err
}

func (a *Allocator) request(ctx context.Context, claimantID int, req vector.Vector) error {
	if a.closed.Load() {
		return ErrClosed
	}

	// Malformed input is rejected before any lock is taken.
	if err := req.Validate(a.types); err != nil {
		return err
	}
	c, ok := a.byID[claimantID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownClaimant, claimantID)
	}

	if a.inflight != nil {
		if err := a.inflight.Acquire(ctx, 1); err != nil {
			return err
		}
		defer a.inflight.Release(1)
	}

	a.p.Lock()
	c.Lock()
	defer c.Unlock()
	defer a.p.Unlock()

	if !c.CanGrant(req) {
		return ErrExceedsClaim
	}
	if !a.p.CanReserveLocked(req) {
		return ErrInsufficientAvailable
	}

	// Speculative apply.
	a.p.ReserveLocked(req)
	c.Grant(req)

	checkStart := time.Now()
	safe := safety.IsSafe(a.statesLocked(), a.p.AvailableLocked())
	a.metrics.RecordSafetyCheck(time.Since(checkStart), safe)

	if !safe {
		// Exact arithmetic inverse of the apply step.
		c.Revert(req)
		a.p.ReturnLocked(req)
		return ErrUnsafeState
	}

	if a.jnl != nil {
		if _, err := a.jnl.Append(journal.OpGrant, int32(claimantID), req); err != nil {
			// Keep the journal authoritative: a grant that cannot
			// be made durable is rolled back and reported.
			c.Revert(req)
			a.p.ReturnLocked(req)
			return err
		}
	}

	return nil
}

// Release returns rel units from the claimant to the pool. Relinquishing
// resources can only improve safety, so no safety check runs; once the
// input is validated the release cannot fail.
func (a *Allocator) Release(ctx context.Context, claimantID int, rel vector.Vector) error {
	start := time.Now()
	err := a.release(claimantID, rel)
	a.metrics.RecordRelease(time.Since(start), err)
	a.logger.LogRelease(ctx, claimantID, rel, err)
	return err
}

func (a *Allocator) release(claimantID int, rel vector.Vector) error {
	if a.closed.Load() {
		return ErrClosed
	}
	if err := rel.Validate(a.types); err != nil {
		return err
	}
	c, ok := a.byID[claimantID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownClaimant, claimantID)
	}

	a.p.Lock()
	c.Lock()
	defer c.Unlock()
	defer a.p.Unlock()

	if !c.CanRelease(rel) {
		return ErrExceedsAllocation
	}

	c.Release(rel)
	a.p.ReturnLocked(rel)

	if a.jnl != nil {
		if _, err := a.jnl.Append(journal.OpRelease, int32(claimantID), rel); err != nil {
			c.Grant(rel)
			a.p.ReserveLocked(rel)
			return err
		}
	}
	return nil
}

// AddCapacity grows the pool's total and available units by delta. It never
// shrinks the pool; previously safe states stay safe.
func (a *Allocator) AddCapacity(ctx context.Context, delta vector.Vector) error {
	if a.closed.Load() {
		return ErrClosed
	}
	if err := delta.Validate(a.types); err != nil {
		return err
	}

	a.p.Lock()
	a.p.GrowLocked(delta)
	total := a.p.TotalLocked().Clone()
	available := a.p.AvailableLocked().Clone()

	var err error
	if a.jnl != nil {
		if _, jerr := a.jnl.Append(journal.OpGrow, -1, delta); jerr != nil {
			err = jerr
		}
	}
	a.p.Unlock()

	if err != nil {
		return err
	}

	a.metrics.RecordGrowth()
	a.logger.LogGrowth(ctx, delta, total, available)
	return nil
}

// statesLocked copies every claimant's vectors. Caller must hold the pool
// lock; all allocation mutations do too, so no claimant can be mid-apply.
func (a *Allocator) statesLocked() []claim.State {
	states := make([]claim.State, len(a.claimants))
	for i, c := range a.claimants {
		states[i] = c.StateLocked()
	}
	return states
}

// SafeSequence returns claimant ids in an order in which every claimant can
// finish, or (nil, false) if the current state admits none. With correct
// usage the latter is unreachable: the arbiter refuses to enter such
// states.
func (a *Allocator) SafeSequence() ([]int, bool) {
	a.p.Lock()
	defer a.p.Unlock()
	return safety.SafeSequence(a.statesLocked(), a.p.AvailableLocked())
}

// Snapshot is a point-in-time copy of the allocator's externally observable
// state.
type Snapshot struct {
	Total     vector.Vector `json:"total"`
	Available vector.Vector `json:"available"`
	Claimants []claim.State `json:"claimants"`
}

// Snapshot copies the pool and every claimant under the pool lock.
// Claimants are ordered by id.
func (a *Allocator) Snapshot() Snapshot {
	a.p.Lock()
	defer a.p.Unlock()

	snap := Snapshot{
		Total:     a.p.TotalLocked().Clone(),
		Available: a.p.AvailableLocked().Clone(),
		Claimants: a.statesLocked(),
	}
	sort.Slice(snap.Claimants, func(i, j int) bool {
		return snap.Claimants[i].ID < snap.Claimants[j].ID
	})
	return snap
}

// MonitorStats reports the consistency monitor's observations.
func (a *Allocator) MonitorStats() MonitorStats {
	return a.monitor.stats()
}

// Close stops the background tasks and closes the journal. Subsequent
// requests fail with ErrClosed. Close is idempotent.
func (a *Allocator) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.bgCancel()
	_ = a.bg.Wait()

	if a.jnl != nil {
		return a.jnl.Close()
	}
	return nil
}
