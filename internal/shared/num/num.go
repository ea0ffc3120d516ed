// Package num holds the small numeric helpers shared by the planning packages.
package num

import (
	"math"
	"sort"
)

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func Round2(v float64) float64 {
	return Round(v, 2)
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func Clamp01(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return Clamp(v, 0, 1)
}

func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Median returns 0 for an empty list.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
