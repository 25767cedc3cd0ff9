package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector gathers outcomes from concurrent workers in a thread-safe manner.
type Collector struct {
	mu        sync.Mutex
	hist      *hdrhistogram.Histogram
	outcomes  []Outcome
	successes int64
	failures  int64
	start     time.Time
}

// Snapshot is a point-in-time view of a Collector used for progress output.
type Snapshot struct {
	Completed    int64
	Successes    int64
	Failures     int64
	P50LatencyMs float64
	P99LatencyMs float64
	Elapsed      time.Duration
}

// NewCollector returns a Collector sized for the expected number of outcomes.
func NewCollector(expected int) *Collector {
	if expected < 0 {
		expected = 0
	}
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:     h,
		outcomes: make([]Outcome, 0, expected),
		start:    time.Now(),
	}
}

// Start resets the clock used for elapsed time in snapshots.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record stores one outcome and returns the number of outcomes recorded so far.
func (c *Collector) Record(o Outcome) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outcomes = append(c.outcomes, o)
	if o.Success {
		c.successes++
		us := int64(o.LatencyMs * 1000)
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	} else {
		c.failures++
	}
	return c.successes + c.failures
}

// Counts returns the success and failure counters.
func (c *Collector) Counts() (successes, failures int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successes, c.failures
}

// Snapshot returns the current counters and histogram percentiles.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Completed: c.successes + c.failures,
		Successes: c.successes,
		Failures:  c.failures,
		Elapsed:   time.Since(c.start),
	}
	if c.hist.TotalCount() > 0 {
		snap.P50LatencyMs = float64(c.hist.ValueAtQuantile(50)) / 1000
		snap.P99LatencyMs = float64(c.hist.ValueAtQuantile(99)) / 1000
	}
	return snap
}

// Outcomes returns a copy of every recorded outcome in completion order.
func (c *Collector) Outcomes() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}
