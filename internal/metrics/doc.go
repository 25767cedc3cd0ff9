// Package metrics models load test outcomes and reduces them into statistics.
//
// A run produces one [Outcome] per attempt. Outcomes are gathered concurrently
// by a [Collector], which also keeps an HDR histogram of successful latencies so
// progress reporters can show live percentiles without sorting.
//
// # Aggregation
//
// Once every attempt for an endpoint has completed, [Aggregate] reduces the
// outcome list into an immutable [EndpointStats]:
//
//	stats := metrics.Aggregate("Docker", collector.Outcomes(), 500)
//
// Latency figures are computed over successful outcomes only. The p95 and p99
// values follow the exclusive N-quantile cut-point convention (cut 19 of 20 and
// cut 99 of 100) and fall back to the maximum latency when fewer than 20 or 100
// successful samples exist. When nothing succeeded every latency field is zero.
//
// # Comparison
//
// [Compare] derives a [Comparison] from two EndpointStats: the faster side, the
// improvement over the slower side, the absolute difference and the standard
// error of each mean. It reports ok=false when either side has no successes.
package metrics
