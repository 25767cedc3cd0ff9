package runner

import (
	"context"

	"github.com/torosent/variantbench/internal/metrics"
)

// Executor performs a single attempt and reports its outcome.
// Implementations must not panic and must be safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context) metrics.Outcome
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context) metrics.Outcome

func (f ExecutorFunc) Execute(ctx context.Context) metrics.Outcome { return f(ctx) }

// ProgressFunc observes each outcome as it is collected. completed counts the
// outcomes recorded so far, including o.
type ProgressFunc func(completed int64, total int, o metrics.Outcome)

// Options configure the Runner.
type Options struct {
	Workers       int                // worker goroutines
	TotalRequests int                // attempts to execute
	Executor      Executor           // required
	Collector     *metrics.Collector // optional; created when nil
	OnComplete    ProgressFunc       // optional
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.Collector == nil {
		o.Collector = metrics.NewCollector(o.TotalRequests)
	}
}
