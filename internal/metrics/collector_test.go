package metrics_test

import (
	"sync"
	"testing"

	"github.com/torosent/variantbench/internal/metrics"
)

func TestCollectorCounts(t *testing.T) {
	c := metrics.NewCollector(4)

	c.Record(metrics.Outcome{LatencyMs: 10, StatusCode: 200, Success: true})
	c.Record(metrics.Outcome{LatencyMs: 20, StatusCode: 200, Success: true})
	c.Record(metrics.Outcome{LatencyMs: 30, StatusCode: 500, ResponseBody: "boom"})
	completed := c.Record(metrics.Outcome{LatencyMs: 40, ErrorKind: metrics.ErrorKindTimeout})

	if completed != 4 {
		t.Fatalf("expected 4 completed, got %d", completed)
	}
	successes, failures := c.Counts()
	if successes != 2 {
		t.Errorf("expected successes 2, got %d", successes)
	}
	if failures != 2 {
		t.Errorf("expected failures 2, got %d", failures)
	}
	if got := len(c.Outcomes()); got != 4 {
		t.Errorf("expected 4 outcomes, got %d", got)
	}
}

func TestCollectorSnapshotPercentiles(t *testing.T) {
	c := metrics.NewCollector(100)
	c.Start()

	// 100 samples: 1ms, 2ms, ..., 100ms.
	for i := 1; i <= 100; i++ {
		c.Record(metrics.Outcome{LatencyMs: float64(i), StatusCode: 200, Success: true})
	}
	// Failures never feed the histogram.
	c.Record(metrics.Outcome{LatencyMs: 30000, ErrorKind: metrics.ErrorKindTimeout})

	snap := c.Snapshot()
	if snap.Completed != 101 {
		t.Fatalf("expected 101 completed, got %d", snap.Completed)
	}
	if snap.P50LatencyMs < 49 || snap.P50LatencyMs > 51 {
		t.Errorf("expected P50 ~50ms, got %.2f", snap.P50LatencyMs)
	}
	if snap.P99LatencyMs < 98 || snap.P99LatencyMs > 100.5 {
		t.Errorf("expected P99 ~99ms, got %.2f", snap.P99LatencyMs)
	}
}

func TestCollectorOutcomesIsCopy(t *testing.T) {
	c := metrics.NewCollector(1)
	c.Record(metrics.Outcome{LatencyMs: 5, StatusCode: 200, Success: true})

	out := c.Outcomes()
	out[0].LatencyMs = 999

	if c.Outcomes()[0].LatencyMs != 5 {
		t.Fatalf("expected collector state to be unaffected by caller mutation")
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := metrics.NewCollector(0)

	var wg sync.WaitGroup
	workers := 10
	recordsPerWorker := 100

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < recordsPerWorker; j++ {
				c.Record(metrics.Outcome{LatencyMs: 1, StatusCode: 200, Success: true})
			}
		}()
	}
	wg.Wait()

	expected := workers * recordsPerWorker
	if got := len(c.Outcomes()); got != expected {
		t.Errorf("expected %d outcomes, got %d", expected, got)
	}
	if snap := c.Snapshot(); snap.Completed != int64(expected) {
		t.Errorf("expected completed %d, got %d", expected, snap.Completed)
	}
}
