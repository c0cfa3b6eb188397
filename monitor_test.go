package bankergo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bankergo/vector"
)

func TestMonitor_Consistent(t *testing.T) {
	ctx := context.Background()
	a := classicAllocator(t)

	m := newMonitor(a, time.Second)
	m.check(ctx)
	m.check(ctx)

	stats := m.stats()
	assert.Equal(t, int64(2), stats.Checks)
	assert.Equal(t, int64(0), stats.Violations)
	assert.False(t, stats.ViolationSeen)
	assert.True(t, stats.Consistent)
}

func TestMonitor_DetectsViolation(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	a := classicAllocator(t, WithMetricsCollector(metrics))

	m := newMonitor(a, time.Second)

	// Corrupt the ledger directly: grant units to a claimant without
	// reserving them from the pool, breaking conservation.
	c := a.byID[0]
	extra := vector.Of(4, 0, 0)
	a.p.Lock()
	c.Lock()
	c.Grant(extra)
	c.Unlock()
	a.p.Unlock()

	m.check(ctx)

	stats := m.stats()
	assert.Equal(t, int64(1), stats.Violations)
	assert.True(t, stats.ViolationSeen)
	assert.False(t, stats.Consistent)
	assert.Equal(t, int64(1), metrics.GetStats().ViolationCount)

	// Undo the corruption; the next check reports consistent again but
	// the sticky flag survives.
	a.p.Lock()
	c.Lock()
	c.Revert(extra)
	c.Unlock()
	a.p.Unlock()

	m.check(ctx)

	stats = m.stats()
	assert.Equal(t, int64(2), stats.Checks)
	assert.Equal(t, int64(1), stats.Violations)
	assert.True(t, stats.ViolationSeen)
	assert.True(t, stats.Consistent)
}

func TestMonitor_Background(t *testing.T) {
	a, err := New(vector.Of(3), []ClaimSpec{{ID: 0, Max: vector.Of(3)}},
		WithMonitorInterval(time.Millisecond))
	require.NoError(t, err)
	defer a.Close()

	require.Eventually(t, func() bool {
		return a.MonitorStats().Checks >= 3
	}, 2*time.Second, time.Millisecond)

	stats := a.MonitorStats()
	assert.Zero(t, stats.Violations)
	assert.True(t, stats.Consistent)
}
