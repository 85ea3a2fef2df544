// Package stats holds the descriptive statistics behind the talent distribution and radar
// insight views.
package stats

import "math"

// Mean returns the arithmetic mean of xs, 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

// SampleStdDev is the n-1 standard deviation. It is 0 when fewer than two values are given.
func SampleStdDev(xs []float64) float64 {
	if len(xs) <= 1 {
		return 0
	}
	return math.Sqrt(sumSquaredDiff(xs, Mean(xs)) / float64(len(xs)-1))
}

// PopulationStdDev divides by n instead of n-1.
func PopulationStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDiff(xs, Mean(xs)) / float64(len(xs)))
}

func sumSquaredDiff(xs []float64, mean float64) float64 {
	sum := 0.0
	for _, x := range xs {
		diff := x - mean
		sum += diff * diff
	}
	return sum
}

// Summary is the (mean, sample standard deviation) pair of a set of scores.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

func Summarize(xs []float64) Summary {
	return Summary{Mean: Mean(xs), StdDev: SampleStdDev(xs)}
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
