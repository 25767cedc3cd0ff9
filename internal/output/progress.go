package output

import (
	"fmt"
	"io"

	"github.com/torosent/variantbench/internal/metrics"
)

// DefaultProgressEvery is how many completions pass between progress lines.
const DefaultProgressEvery = 50

// ProgressReporter prints a progress line every N completions and on the
// final one. It is driven by the runner's completion callback, which is
// invoked from a single goroutine.
type ProgressReporter struct {
	writer    io.Writer
	every     int64
	collector *metrics.Collector
}

// NewProgressReporter creates a reporter. When collector is non-nil each line
// also carries live success/failure counts and histogram percentiles.
func NewProgressReporter(writer io.Writer, every int, collector *metrics.Collector) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if every <= 0 {
		every = DefaultProgressEvery
	}
	return &ProgressReporter{writer: writer, every: int64(every), collector: collector}
}

// Observe matches runner.ProgressFunc.
func (p *ProgressReporter) Observe(completed int64, total int, _ metrics.Outcome) {
	if completed%p.every != 0 && completed != int64(total) {
		return
	}
	line := fmt.Sprintf("Progress: %d/%d requests completed", completed, total)
	if p.collector != nil {
		snap := p.collector.Snapshot()
		line += fmt.Sprintf(" | ok=%d failed=%d p50=%.1fms p99=%.1fms",
			snap.Successes, snap.Failures, snap.P50LatencyMs, snap.P99LatencyMs)
	}
	fmt.Fprintln(p.writer, line)
}
