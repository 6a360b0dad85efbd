// Package stats provides the aggregation arithmetic used over bitrate
// sample sets.
package stats

import "math"

// Mean returns the arithmetic mean of values, 0 for an empty set.
func Mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values, 0 for sets
// smaller than two.
func StdDev(values []int64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Min returns the smallest value, 0 for an empty set.
func Min(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, 0 for an empty set.
func Max(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// DiscardIndex returns the first sample index that contributes to
// statistics: floor(fraction * samples). Samples below it are treated as
// warm-up and excluded.
func DiscardIndex(samples int, fraction float64) int {
	if samples <= 0 || fraction <= 0 {
		return 0
	}
	return int(math.Floor(fraction * float64(samples)))
}
