package metrics

import "math"

// quantileCuts returns the n-1 cut points dividing sorted into n intervals of
// equal probability, using the exclusive method: the data is treated as a
// sample from a population that may hold values beyond the observed extremes.
// sorted must hold at least two values.
func quantileCuts(sorted []float64, n int) []float64 {
	ld := len(sorted)
	m := ld + 1
	cuts := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		j := i * m / n
		if j < 1 {
			j = 1
		} else if j > ld-1 {
			j = ld - 1
		}
		delta := i*m - j*n
		cut := (sorted[j-1]*float64(n-delta) + sorted[j]*float64(delta)) / float64(n)
		cuts = append(cuts, cut)
	}
	return cuts
}

// cutPoint returns cut point idx of an n-quantile split, or the maximum value
// when fewer than n samples exist.
func cutPoint(sorted []float64, n, idx int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) < n {
		return sorted[len(sorted)-1]
	}
	return quantileCuts(sorted, n)[idx]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStdDev uses the N-1 denominator and is 0 for fewer than two values.
func sampleStdDev(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - avg
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}
