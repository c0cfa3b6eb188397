package bankergo

import (
	"context"
	"time"
)

// mutator periodically injects additional capacity into the pool. It shares
// the pool's growth operation with AddCapacity, so its ticks interleave
// arbitrarily with requests without ever exposing a half-applied change.
type mutator struct {
	alloc    *Allocator
	interval time.Duration
	growth   GrowthFunc
}

func (m *mutator) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			delta := m.growth()
			if delta.IsZero() {
				continue
			}
			if err := m.alloc.AddCapacity(ctx, delta); err != nil {
				m.alloc.logger.WarnContext(ctx, "capacity growth failed", "error", err)
			}
		}
	}
}
