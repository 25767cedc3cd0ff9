package metrics

import "math"

// Side summarises one endpoint inside a Comparison.
type Side struct {
	Name         string  `json:"name" yaml:"name"`
	AvgLatencyMs float64 `json:"avg_response_time_ms" yaml:"avg_response_time_ms"`
	StdDevMs     float64 `json:"std_dev_ms" yaml:"std_dev_ms"`
	StdErrorMs   float64 `json:"standard_error_ms" yaml:"standard_error_ms"`
	SuccessCount int     `json:"successful_requests" yaml:"successful_requests"`
}

// Comparison is derived from two EndpointStats with at least one success each.
type Comparison struct {
	Winner         string  `json:"winner" yaml:"winner"`
	Loser          string  `json:"loser" yaml:"loser"`
	ImprovementPct float64 `json:"improvement_pct" yaml:"improvement_pct"`
	DifferenceMs   float64 `json:"difference_ms" yaml:"difference_ms"`
	First          Side    `json:"first" yaml:"first"`
	Second         Side    `json:"second" yaml:"second"`
}

// Compare computes the Comparison of a and b. The faster mean wins; a tie goes
// to b. ok is false when either side has no successful requests.
func Compare(a, b EndpointStats) (Comparison, bool) {
	if a.SuccessfulRequests <= 0 || b.SuccessfulRequests <= 0 {
		return Comparison{}, false
	}

	first := newSide(a)
	second := newSide(b)

	winner, loser := second, first
	if first.AvgLatencyMs < second.AvgLatencyMs {
		winner, loser = first, second
	}

	cmp := Comparison{
		Winner:       winner.Name,
		Loser:        loser.Name,
		DifferenceMs: math.Abs(first.AvgLatencyMs - second.AvgLatencyMs),
		First:        first,
		Second:       second,
	}
	if loser.AvgLatencyMs > 0 {
		cmp.ImprovementPct = (loser.AvgLatencyMs - winner.AvgLatencyMs) / loser.AvgLatencyMs * 100
	}
	return cmp, true
}

// StandardError returns std_dev / sqrt(successful_requests), or 0 without successes.
func StandardError(stats EndpointStats) float64 {
	if stats.SuccessfulRequests <= 0 {
		return 0
	}
	return stats.StdDevMs / math.Sqrt(float64(stats.SuccessfulRequests))
}

func newSide(stats EndpointStats) Side {
	return Side{
		Name:         stats.EndpointName,
		AvgLatencyMs: stats.AvgLatencyMs,
		StdDevMs:     stats.StdDevMs,
		StdErrorMs:   StandardError(stats),
		SuccessCount: stats.SuccessfulRequests,
	}
}
