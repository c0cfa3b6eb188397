package bankergo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordRequest is called after each request. err is nil on grant,
	// a denial sentinel on denial.
	RecordRequest(duration time.Duration, err error)

	// RecordRelease is called after each release.
	RecordRelease(duration time.Duration, err error)

	// RecordSafetyCheck is called after each safety evaluation inside a
	// request.
	RecordSafetyCheck(duration time.Duration, safe bool)

	// RecordGrowth is called after each capacity growth.
	RecordGrowth()

	// RecordViolation is called by the consistency monitor for each
	// check that observes a conservation violation.
	RecordViolation()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRequest(time.Duration, error)    {}
func (NoopMetricsCollector) RecordRelease(time.Duration, error)    {}
func (NoopMetricsCollector) RecordSafetyCheck(time.Duration, bool) {}
func (NoopMetricsCollector) RecordGrowth()                         {}
func (NoopMetricsCollector) RecordViolation()                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RequestCount      atomic.Int64
	RequestDenied     atomic.Int64
	RequestErrors     atomic.Int64
	RequestTotalNanos atomic.Int64
	ReleaseCount      atomic.Int64
	ReleaseErrors     atomic.Int64
	SafetyCheckCount  atomic.Int64
	UnsafeStates      atomic.Int64
	GrowthCount       atomic.Int64
	ViolationCount    atomic.Int64
}

// RecordRequest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRequest(duration time.Duration, err error) {
	b.RequestCount.Add(1)
	b.RequestTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err == nil:
	case IsDenial(err):
		b.RequestDenied.Add(1)
	default:
		b.RequestErrors.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(duration time.Duration, err error) {
	b.ReleaseCount.Add(1)
	if err != nil {
		b.ReleaseErrors.Add(1)
	}
}

// RecordSafetyCheck implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSafetyCheck(duration time.Duration, safe bool) {
	b.SafetyCheckCount.Add(1)
	if !safe {
		b.UnsafeStates.Add(1)
	}
}

// RecordGrowth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrowth() {
	b.GrowthCount.Add(1)
}

// RecordViolation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordViolation() {
	b.ViolationCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		RequestCount:     b.RequestCount.Load(),
		RequestDenied:    b.RequestDenied.Load(),
		RequestErrors:    b.RequestErrors.Load(),
		ReleaseCount:     b.ReleaseCount.Load(),
		ReleaseErrors:    b.ReleaseErrors.Load(),
		SafetyCheckCount: b.SafetyCheckCount.Load(),
		UnsafeStates:     b.UnsafeStates.Load(),
		GrowthCount:      b.GrowthCount.Load(),
		ViolationCount:   b.ViolationCount.Load(),
	}
	if stats.RequestCount > 0 {
		stats.RequestAvgNanos = b.RequestTotalNanos.Load() / stats.RequestCount
	}
	return stats
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RequestCount     int64
	RequestDenied    int64
	RequestErrors    int64
	RequestAvgNanos  int64
	ReleaseCount     int64
	ReleaseErrors    int64
	SafetyCheckCount int64
	UnsafeStates     int64
	GrowthCount      int64
	ViolationCount   int64
}
