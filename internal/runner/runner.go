package runner

import (
	"context"
	"sync"
	"time"

	"github.com/torosent/variantbench/internal/metrics"
)

// Result captures one endpoint's run.
type Result struct {
	Outcomes  []metrics.Outcome // completion order
	Successes int64
	Failures  int64
	Duration  time.Duration
}

// Runner executes a fixed number of attempts with bounded concurrency.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Collector returns the collector outcomes are recorded into.
func (r *Runner) Collector() *metrics.Collector {
	return r.opt.Collector
}

func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	total := r.opt.TotalRequests
	if total == 0 || r.opt.Executor == nil {
		return Result{Outcomes: []metrics.Outcome{}, Duration: time.Since(start)}
	}

	collector := r.opt.Collector
	collector.Start()

	permits := make(chan struct{})
	results := make(chan metrics.Outcome, r.opt.Workers)

	go func() {
		defer close(permits)
		for i := 0; i < total; i++ {
			permits <- struct{}{}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(r.opt.Workers)
	for i := 0; i < r.opt.Workers; i++ {
		go func() {
			defer wg.Done()
			for range permits {
				results <- r.opt.Executor.Execute(ctx)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		completed := collector.Record(o)
		if r.opt.OnComplete != nil {
			r.opt.OnComplete(completed, total, o)
		}
	}

	successes, failures := collector.Counts()
	return Result{
		Outcomes:  collector.Outcomes(),
		Successes: successes,
		Failures:  failures,
		Duration:  time.Since(start),
	}
}
