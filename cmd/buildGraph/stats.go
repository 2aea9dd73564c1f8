package main

import (
	"fmt"
	"sort"
)

// batchStats holds "5%-avg-min", median, and "5%-avg-max" ns/op for one batch size.
type batchStats struct {
	x      float64 // category position on the plot
	batch  int
	min    float64 // average of the bottom 5%
	median float64
	max    float64 // average of the top 5%
}

// statsPoints implements XYer and YErrorer so we can plot lines + error bars.
type statsPoints []batchStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].x, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	return s[i].median - s[i].min, s[i].max - s[i].median
}

// buildStats summarises the ns/op samples per batch size, ordered by batch size.
func buildStats(samples map[int][]float64) []batchStats {
	out := make([]batchStats, 0, len(samples))
	for batch, vals := range samples {
		if len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		out = append(out, batchStats{
			batch:  batch,
			min:    averageOfRange(sorted, 0.0, 0.05),
			median: median(sorted),
			max:    averageOfRange(sorted, 0.95, 1.0),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].batch < out[j].batch })
	return out
}

// averageOfRange returns the average of sortedVals in [startFrac, endFrac] of its length.
// E.g. averageOfRange(vals, 0, 0.05) is the average of the bottom 5%.
func averageOfRange(sortedVals []float64, startFrac, endFrac float64) float64 {
	n := len(sortedVals)
	if n == 0 {
		return 0
	}
	start := max(int(float64(n)*startFrac), 0)
	end := min(int(float64(n)*endFrac), n)
	if start >= end {
		// too few samples for the slice, fall back to the median
		return median(sortedVals)
	}
	sum := 0.0
	for _, v := range sortedVals[start:end] {
		sum += v
	}
	return sum / float64(end-start)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// formatNs formats a nanoseconds value in ns, µs, ms, or s.
func formatNs(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0fns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.1fµs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.1fms", ns/1e6)
	default:
		return fmt.Sprintf("%.2fs", ns/1e9)
	}
}
