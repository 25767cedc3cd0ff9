package metrics

import "sort"

const (
	p95Quantiles = 20
	p95CutIndex  = 18
	p99Quantiles = 100
	p99CutIndex  = 98
)

// SampleError is a representative failure for one error kind.
type SampleError struct {
	ErrorKind    ErrorKind `json:"error_kind" yaml:"error_kind"`
	ErrorMessage string    `json:"error_message" yaml:"error_message"`
	ResponseBody string    `json:"response_body,omitempty" yaml:"response_body,omitempty"`
}

// EndpointStats is the aggregate over one endpoint's run.
type EndpointStats struct {
	EndpointName       string  `json:"endpoint_name" yaml:"endpoint_name"`
	TotalRequests      int     `json:"total_requests" yaml:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests" yaml:"successful_requests"`
	FailedRequests     int     `json:"failed_requests" yaml:"failed_requests"`
	SuccessRate        float64 `json:"success_rate" yaml:"success_rate"`

	AvgLatencyMs    float64 `json:"avg_response_time_ms" yaml:"avg_response_time_ms"`
	MedianLatencyMs float64 `json:"median_response_time_ms" yaml:"median_response_time_ms"`
	MinLatencyMs    float64 `json:"min_response_time_ms" yaml:"min_response_time_ms"`
	MaxLatencyMs    float64 `json:"max_response_time_ms" yaml:"max_response_time_ms"`
	StdDevMs        float64 `json:"std_dev_ms" yaml:"std_dev_ms"`
	P95LatencyMs    float64 `json:"p95_response_time_ms" yaml:"p95_response_time_ms"`
	P99LatencyMs    float64 `json:"p99_response_time_ms" yaml:"p99_response_time_ms"`

	ErrorBreakdown      map[ErrorKind]int `json:"error_breakdown" yaml:"error_breakdown"`
	StatusCodeBreakdown map[int]int       `json:"status_code_breakdown" yaml:"status_code_breakdown"`
	SampleErrors        []SampleError     `json:"sample_errors" yaml:"sample_errors"`
}

// Aggregate reduces outcomes into EndpointStats. numRequests is the number of
// attempts that were scheduled and is used as the total.
//
// The result does not depend on the order of outcomes: latencies are sorted
// and the sample kept for each error kind is the lexicographically smallest
// message/body pair.
func Aggregate(name string, outcomes []Outcome, numRequests int) EndpointStats {
	stats := EndpointStats{
		EndpointName:        name,
		TotalRequests:       numRequests,
		ErrorBreakdown:      map[ErrorKind]int{},
		StatusCodeBreakdown: map[int]int{},
		SampleErrors:        []SampleError{},
	}

	latencies := make([]float64, 0, len(outcomes))
	samples := map[ErrorKind]SampleError{}

	for _, o := range outcomes {
		if o.HasResponse() {
			stats.StatusCodeBreakdown[o.StatusCode]++
		}
		if o.Success {
			stats.SuccessfulRequests++
			latencies = append(latencies, o.LatencyMs)
			continue
		}
		stats.FailedRequests++
		if o.ErrorKind == "" {
			continue
		}
		stats.ErrorBreakdown[o.ErrorKind]++
		candidate := SampleError{
			ErrorKind:    o.ErrorKind,
			ErrorMessage: o.ErrorMessage,
			ResponseBody: o.ResponseBody,
		}
		if prev, ok := samples[o.ErrorKind]; !ok || sampleLess(candidate, prev) {
			samples[o.ErrorKind] = candidate
		}
	}

	for _, s := range samples {
		stats.SampleErrors = append(stats.SampleErrors, s)
	}
	sort.Slice(stats.SampleErrors, func(i, j int) bool {
		a, b := stats.SampleErrors[i].ErrorKind, stats.SampleErrors[j].ErrorKind
		if kindRank(a) == kindRank(b) {
			return a < b
		}
		return kindRank(a) < kindRank(b)
	})

	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRequests) * 100 / float64(stats.TotalRequests)
	}
	if len(latencies) == 0 {
		stats.SuccessRate = 0
		return stats
	}

	sort.Float64s(latencies)
	stats.AvgLatencyMs = mean(latencies)
	stats.MedianLatencyMs = median(latencies)
	stats.MinLatencyMs = latencies[0]
	stats.MaxLatencyMs = latencies[len(latencies)-1]
	stats.StdDevMs = sampleStdDev(latencies, stats.AvgLatencyMs)
	stats.P95LatencyMs = cutPoint(latencies, p95Quantiles, p95CutIndex)
	stats.P99LatencyMs = cutPoint(latencies, p99Quantiles, p99CutIndex)

	return stats
}

func sampleLess(a, b SampleError) bool {
	if a.ErrorMessage == b.ErrorMessage {
		return a.ResponseBody < b.ResponseBody
	}
	return a.ErrorMessage < b.ErrorMessage
}
