// Package runner drives a fixed number of attempts against one endpoint with a
// bounded pool of workers.
//
// Workers pull permits from an unbuffered channel, so at most Workers attempts
// are in flight and none are queued ahead of a free worker. Outcomes flow back
// over a results channel and are recorded by the driving goroutine in
// completion order:
//
//	r := runner.New(runner.Options{
//		Workers:       10,
//		TotalRequests: 500,
//		Executor:      runner.WithDiagnostics(exec, "Docker", logger),
//		OnComplete:    progress.Observe,
//	})
//	res := r.Run(ctx)
//
// There are no retries and no cancellation path. Run returns after every
// worker has finished.
package runner
