package metrics_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torosent/variantbench/internal/metrics"
)

func ok(latency float64) metrics.Outcome {
	return metrics.Outcome{LatencyMs: latency, StatusCode: 200, Success: true}
}

func failed(latency float64, kind metrics.ErrorKind, msg string) metrics.Outcome {
	return metrics.Outcome{LatencyMs: latency, ErrorKind: kind, ErrorMessage: msg}
}

func TestAggregateCountsAlwaysSumToTotal(t *testing.T) {
	outcomes := []metrics.Outcome{
		ok(10),
		ok(12),
		{LatencyMs: 40, StatusCode: 503, ResponseBody: "unavailable"},
		failed(30000, metrics.ErrorKindTimeout, "deadline exceeded"),
		failed(3, metrics.ErrorKindConnection, "connection refused"),
	}

	stats := metrics.Aggregate("Docker", outcomes, len(outcomes))

	assert.Equal(t, "Docker", stats.EndpointName)
	assert.Equal(t, 5, stats.TotalRequests)
	assert.Equal(t, 2, stats.SuccessfulRequests)
	assert.Equal(t, 3, stats.FailedRequests)
	assert.Equal(t, stats.TotalRequests, stats.SuccessfulRequests+stats.FailedRequests)
	assert.InDelta(t, 40.0, stats.SuccessRate, 1e-9)
}

func TestAggregateZeroSuccessesZeroesLatency(t *testing.T) {
	outcomes := []metrics.Outcome{
		failed(30000, metrics.ErrorKindTimeout, "timeout"),
		failed(1, metrics.ErrorKindConnection, "refused"),
		{LatencyMs: 15, StatusCode: 500, ResponseBody: "internal"},
	}

	stats := metrics.Aggregate("ZIP", outcomes, 3)

	assert.Zero(t, stats.SuccessfulRequests)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AvgLatencyMs)
	assert.Zero(t, stats.MedianLatencyMs)
	assert.Zero(t, stats.MinLatencyMs)
	assert.Zero(t, stats.MaxLatencyMs)
	assert.Zero(t, stats.StdDevMs)
	assert.Zero(t, stats.P95LatencyMs)
	assert.Zero(t, stats.P99LatencyMs)
	assert.Equal(t, 3, stats.FailedRequests)
	assert.Equal(t, map[int]int{500: 1}, stats.StatusCodeBreakdown)
}

func TestAggregateNoRequests(t *testing.T) {
	stats := metrics.Aggregate("Docker", nil, 0)

	assert.Zero(t, stats.TotalRequests)
	assert.Zero(t, stats.SuccessfulRequests)
	assert.Zero(t, stats.FailedRequests)
	assert.Zero(t, stats.SuccessRate)
	assert.False(t, math.IsNaN(stats.AvgLatencyMs))
	assert.Empty(t, stats.ErrorBreakdown)
	assert.Empty(t, stats.StatusCodeBreakdown)
	assert.NotNil(t, stats.SampleErrors)
}

func TestAggregateStdDev(t *testing.T) {
	single := metrics.Aggregate("one", []metrics.Outcome{ok(42)}, 1)
	assert.Zero(t, single.StdDevMs)

	many := metrics.Aggregate("many", []metrics.Outcome{ok(1), ok(2), ok(3), ok(4), ok(5)}, 5)
	assert.InDelta(t, math.Sqrt(2.5), many.StdDevMs, 1e-9)
	assert.InDelta(t, 3.0, many.AvgLatencyMs, 1e-9)
	assert.InDelta(t, 3.0, many.MedianLatencyMs, 1e-9)
	assert.Equal(t, 1.0, many.MinLatencyMs)
	assert.Equal(t, 5.0, many.MaxLatencyMs)
}

func TestAggregatePercentileFallback(t *testing.T) {
	outcomes := make([]metrics.Outcome, 0, 19)
	for i := 1; i <= 19; i++ {
		outcomes = append(outcomes, ok(float64(i)))
	}
	stats := metrics.Aggregate("small", outcomes, len(outcomes))
	assert.Equal(t, 19.0, stats.P95LatencyMs, "p95 falls back to max below 20 samples")
	assert.Equal(t, 19.0, stats.P99LatencyMs, "p99 falls back to max below 100 samples")

	outcomes = append(outcomes, ok(20))
	stats = metrics.Aggregate("twenty", outcomes, len(outcomes))
	assert.InDelta(t, 19.95, stats.P95LatencyMs, 1e-9, "p95 uses the 19th of 20 cut points")
	assert.NotEqual(t, stats.MaxLatencyMs, stats.P95LatencyMs)
	assert.Equal(t, 20.0, stats.P99LatencyMs)
}

func TestAggregateBreakdowns(t *testing.T) {
	outcomes := []metrics.Outcome{
		ok(10),
		{LatencyMs: 11, StatusCode: 502, ResponseBody: "bad gateway", ErrorMessage: "HTTP 502"},
		{LatencyMs: 12, StatusCode: 502, ResponseBody: "bad gateway", ErrorMessage: "HTTP 502"},
		failed(5, metrics.ErrorKindConnection, "connection reset"),
		failed(4, metrics.ErrorKindConnection, "connection refused"),
		failed(30000, metrics.ErrorKindTimeout, "deadline exceeded"),
	}

	stats := metrics.Aggregate("Docker", outcomes, len(outcomes))

	assert.Equal(t, map[metrics.ErrorKind]int{
		metrics.ErrorKindConnection: 2,
		metrics.ErrorKindTimeout:    1,
	}, stats.ErrorBreakdown)
	assert.Equal(t, map[int]int{200: 1, 502: 2}, stats.StatusCodeBreakdown)

	require.Len(t, stats.SampleErrors, 2)
	assert.Equal(t, metrics.ErrorKindTimeout, stats.SampleErrors[0].ErrorKind)
	assert.Equal(t, metrics.ErrorKindConnection, stats.SampleErrors[1].ErrorKind)
	assert.Equal(t, "connection refused", stats.SampleErrors[1].ErrorMessage)
}

func TestAggregateIndependentOfOrder(t *testing.T) {
	outcomes := make([]metrics.Outcome, 0, 200)
	for i := 0; i < 150; i++ {
		outcomes = append(outcomes, ok(50+float64(i%37)))
	}
	for i := 0; i < 30; i++ {
		outcomes = append(outcomes, failed(float64(i), metrics.ErrorKindConnection, "refused #"+string(rune('a'+i%26))))
	}
	for i := 0; i < 20; i++ {
		outcomes = append(outcomes, metrics.Outcome{LatencyMs: float64(i), StatusCode: 429, ResponseBody: "slow down"})
	}

	want := metrics.Aggregate("Docker", outcomes, len(outcomes))

	rnd := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		shuffled := append([]metrics.Outcome(nil), outcomes...)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := metrics.Aggregate("Docker", shuffled, len(shuffled))
		require.Equal(t, want.SampleErrors, got.SampleErrors)
		require.InDelta(t, want.AvgLatencyMs, got.AvgLatencyMs, 1e-9)
		require.Equal(t, want.P95LatencyMs, got.P95LatencyMs)
		require.Equal(t, want.P99LatencyMs, got.P99LatencyMs)
		require.Equal(t, want.MedianLatencyMs, got.MedianLatencyMs)
		require.Equal(t, want.ErrorBreakdown, got.ErrorBreakdown)
		require.Equal(t, want.StatusCodeBreakdown, got.StatusCodeBreakdown)
	}
}

func TestAggregateFiveHundredRequestScenario(t *testing.T) {
	outcomes := make([]metrics.Outcome, 0, 500)
	successLatencies := make([]float64, 0, 480)
	for i := 0; i < 480; i++ {
		latency := 90 + float64(i%21)
		successLatencies = append(successLatencies, latency)
		outcomes = append(outcomes, ok(latency))
	}
	for i := 0; i < 20; i++ {
		outcomes = append(outcomes, failed(2, metrics.ErrorKindConnection, "dial tcp: connection refused"))
	}

	stats := metrics.Aggregate("Docker", outcomes, 500)

	assert.Equal(t, 500, stats.TotalRequests)
	assert.Equal(t, 480, stats.SuccessfulRequests)
	assert.Equal(t, 20, stats.FailedRequests)
	assert.InDelta(t, 96.0, stats.SuccessRate, 1e-9)
	assert.Equal(t, map[metrics.ErrorKind]int{metrics.ErrorKindConnection: 20}, stats.ErrorBreakdown)
	assert.Equal(t, map[int]int{200: 480}, stats.StatusCodeBreakdown)

	// Percentiles come from the 480 successful latencies only.
	only := metrics.Aggregate("only-successes", outcomes[:480], 480)
	assert.Equal(t, only.P95LatencyMs, stats.P95LatencyMs)
	assert.Equal(t, only.P99LatencyMs, stats.P99LatencyMs)
	assert.GreaterOrEqual(t, stats.P95LatencyMs, stats.MedianLatencyMs)
	assert.LessOrEqual(t, stats.P99LatencyMs, stats.MaxLatencyMs)
	assert.Equal(t, 90.0, stats.MinLatencyMs)
	assert.Equal(t, 110.0, stats.MaxLatencyMs)
	assert.InDelta(t, 100.0, stats.AvgLatencyMs, 0.5)
}

func TestSuccessRateBounds(t *testing.T) {
	for successes := 0; successes <= 10; successes++ {
		outcomes := make([]metrics.Outcome, 0, 10)
		for i := 0; i < 10; i++ {
			if i < successes {
				outcomes = append(outcomes, ok(1))
			} else {
				outcomes = append(outcomes, failed(1, metrics.ErrorKindRequest, "bad"))
			}
		}
		stats := metrics.Aggregate("bounds", outcomes, 10)
		assert.GreaterOrEqual(t, stats.SuccessRate, 0.0)
		assert.LessOrEqual(t, stats.SuccessRate, 100.0)
		assert.InDelta(t, 100*float64(successes)/10, stats.SuccessRate, 1e-9)
	}
}
