// Package stats holds the small set of descriptive statistics used for
// hypothesis analysis.
package stats

import (
	"math"
	"slices"
)

// Mean is the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the population standard deviation, or 0 for fewer than two
// values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Pearson is the correlation coefficient of x and y, truncated to the
// shorter of the two. It returns 0 when there are fewer than two pairs or
// either series is constant.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	if n < 2 {
		return 0
	}
	x, y = x[:n], y[:n]
	mx, my := Mean(x), Mean(y)

	var num, dx, dy float64
	for i := range n {
		a, b := x[i]-mx, y[i]-my
		num += a * b
		dx += a * a
		dy += b * b
	}
	if dx == 0 || dy == 0 {
		return 0
	}
	return num / (math.Sqrt(dx) * math.Sqrt(dy))
}

// Percentile returns the p-th percentile (0-100) with linear
// interpolation between closest ranks, or 0 for no values.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	k := float64(len(sorted)-1) * (p / 100)
	f, c := math.Floor(k), math.Ceil(k)
	if f == c {
		return sorted[int(k)]
	}
	return sorted[int(f)]*(c-k) + sorted[int(c)]*(k-f)
}
