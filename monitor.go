package bankergo

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/bankergo/vector"
)

// MonitorStats reports the consistency monitor's observations.
type MonitorStats struct {
	// Checks is the number of conservation checks performed.
	Checks int64

	// Violations is the number of checks that observed an allocated sum
	// exceeding total for any resource type.
	Violations int64

	// ViolationSeen reports whether a violation has ever been observed.
	// It is sticky: it stays true after the first violation.
	ViolationSeen bool

	// Consistent reports whether the most recent check was clean.
	Consistent bool
}

// monitor periodically asserts the conservation law: per resource type, the
// sum of all claimants' allocations plus available equals total. A
// violation can only come from a lock-discipline or logic defect, never
// from a legitimate request, so it is reported as a fatal-class diagnostic.
type monitor struct {
	alloc    *Allocator
	interval time.Duration

	checks        atomic.Int64
	violations    atomic.Int64
	violationSeen atomic.Bool
	inViolation   atomic.Bool

	// Violations repeat every tick while the defect persists; the
	// limiter keeps the error log readable.
	logLimiter *rate.Limiter
}

func newMonitor(a *Allocator, interval time.Duration) *monitor {
	return &monitor{
		alloc:      a,
		interval:   interval,
		logLimiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

func (m *monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check takes the pool lock and sums every claimant's allocation. All
// allocation mutations hold the pool lock, so the sum is a consistent
// snapshot and never observes a claimant mid-apply.
func (m *monitor) check(ctx context.Context) {
	a := m.alloc

	a.p.Lock()
	total := a.p.TotalLocked().Clone()
	allocated := vector.New(a.types)
	for _, c := range a.claimants {
		allocated.AddInPlace(c.AllocatedLocked())
	}
	a.p.Unlock()

	m.checks.Add(1)

	if !allocated.DominatedBy(total) {
		m.violations.Add(1)
		m.violationSeen.Store(true)
		m.inViolation.Store(true)
		a.metrics.RecordViolation()
		if m.logLimiter.Allow() {
			a.logger.LogViolation(ctx, allocated, total)
		}
		return
	}

	// Report the first clean check after a run of violations.
	if m.inViolation.CompareAndSwap(true, false) {
		a.logger.InfoContext(ctx, "conservation restored",
			"allocated", allocated.String(),
			"total", total.String(),
		)
	}
}

func (m *monitor) stats() MonitorStats {
	return MonitorStats{
		Checks:        m.checks.Load(),
		Violations:    m.violations.Load(),
		ViolationSeen: m.violationSeen.Load(),
		Consistent:    !m.inViolation.Load(),
	}
}
