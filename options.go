package bankergo

import (
	"log/slog"
	"time"

	"github.com/hupe1980/bankergo/journal"
	"github.com/hupe1980/bankergo/vector"
)

// GrowthFunc produces the capacity delta for one mutator tick. The returned
// vector must have one component per resource type, each ≥ 0.
type GrowthFunc func() vector.Vector

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector

	monitorInterval time.Duration

	growthInterval time.Duration
	growthFunc     GrowthFunc
	growthSeed     int64

	journalPath    string
	journalOptions []func(*journal.Options)

	maxInflight int64
}

// Option configures allocator construction.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMonitorInterval sets the consistency monitor cadence. The monitor
// asserts the conservation law (allocated + available == total per resource
// type) on every tick. Zero disables the monitor. Default: 1s.
func WithMonitorInterval(d time.Duration) Option {
	return func(o *options) {
		o.monitorInterval = d
	}
}

// WithCapacityGrowth enables the background capacity mutator: every
// interval the pool grows by the vector fn returns. A nil fn uses a seeded
// RNG drawing each component uniformly from [0, 2].
//
// Growth never shrinks the pool, so it can never invalidate a safe state.
func WithCapacityGrowth(interval time.Duration, fn GrowthFunc) Option {
	return func(o *options) {
		o.growthInterval = interval
		o.growthFunc = fn
	}
}

// WithGrowthSeed sets the seed for the default random growth source. Only
// relevant when WithCapacityGrowth is used with a nil GrowthFunc.
func WithGrowthSeed(seed int64) Option {
	return func(o *options) {
		o.growthSeed = seed
	}
}

// WithJournal enables the append-only mutation journal at path. An existing
// journal is replayed at construction, so a restarted allocator resumes
// with the same allocations and capacity.
//
// Example:
//
//	alloc, err := bankergo.New(total, claims,
//	    bankergo.WithJournal("./alloc.journal", func(o *journal.Options) {
//	        o.SyncMode = journal.SyncNever
//	        o.Compress = true
//	    }),
//	)
func WithJournal(path string, optFns ...func(*journal.Options)) Option {
	return func(o *options) {
		o.journalPath = path
		o.journalOptions = optFns
	}
}

// WithMaxInflight bounds the number of requests admitted concurrently
// before they contend on the pool lock. Admission respects context
// cancellation. Zero (the default) means unbounded.
func WithMaxInflight(n int64) Option {
	return func(o *options) {
		o.maxInflight = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		monitorInterval:  time.Second,
		growthSeed:       time.Now().UnixNano(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
