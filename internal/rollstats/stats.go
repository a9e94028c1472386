package rollstats

import "math"

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Stddev returns the sample standard deviation (n-1 denominator).
// Returns 0 below two values.
func Stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// CV returns the coefficient of variation (stddev / mean).
// Undefined when the mean is 0 and reported as nil.
func CV(values []float64) *float64 {
	mean := Mean(values)
	if mean == 0 {
		return nil
	}
	cv := Stddev(values) / mean
	return &cv
}

// TrailingMean returns the mean of the last n values, or of all values when
// fewer than n exist.
func TrailingMean(values []float64, n int) float64 {
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return Mean(values)
}

// TrailingStddev returns the sample stddev of the last n values.
func TrailingStddev(values []float64, n int) float64 {
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return Stddev(values)
}

// LagDelta returns values[i] - values[i-lag], or nil when i-lag is out of
// range. Shared by the net worth roll-up for day/week/month/year deltas.
func LagDelta(values []float64, i, lag int) *float64 {
	if lag <= 0 || i-lag < 0 || i >= len(values) {
		return nil
	}
	d := values[i] - values[i-lag]
	return &d
}
