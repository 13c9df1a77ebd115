package main

import (
	"fmt"
	"io"
	"sort"
)

// LatencyStats accumulates latency samples in arrival order and derives
// percentile summaries on demand. Samples are microseconds.
type LatencyStats struct {
	samples []float64
}

// NewLatencyStats returns an empty collection. A positive sizeHint
// pre-sizes the backing slice (used when a sample limit is configured).
func NewLatencyStats(sizeHint int) *LatencyStats {
	if sizeHint <= 0 {
		sizeHint = 4096
	}
	return &LatencyStats{samples: make([]float64, 0, sizeHint)}
}

// Record appends one sample. Callers must have already rejected
// negative deltas.
func (s *LatencyStats) Record(us float64) {
	s.samples = append(s.samples, us)
}

// Count returns the number of recorded samples.
func (s *LatencyStats) Count() int {
	return len(s.samples)
}

// Snapshot holds a derived statistics summary.
type Snapshot struct {
	Count int
	Avg   float64
	P50   float64
	P95   float64
	P99   float64
}

// Snapshot computes the current summary over a sorted copy of the
// samples, leaving arrival order intact. ok is false when no samples
// have been recorded.
func (s *LatencyStats) Snapshot() (snap Snapshot, ok bool) {
	if len(s.samples) == 0 {
		return Snapshot{}, false
	}
	sorted := make([]float64, len(s.samples))
	copy(sorted, s.samples)
	sort.Float64s(sorted)

	var sum float64
	for _, x := range sorted {
		sum += x
	}
	return Snapshot{
		Count: len(sorted),
		Avg:   sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
	}, true
}

// percentile computes percentile p over an ascending-sorted slice using
// linear interpolation between the two nearest ranks: the fractional
// index is (p/100)*(n-1). p<=0 yields the minimum, p>=100 the maximum.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lo := int(idx)
	frac := idx - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// Print writes the summary block in the fixed console format. Final
// summaries get a leading blank line to separate them from the event
// stream.
func (snap Snapshot) Print(w io.Writer, final bool) {
	label := "Rolling"
	if final {
		fmt.Fprintln(w)
		label = "Final"
	}
	fmt.Fprintf(w, "=== %s Latency Stats (usec) over %d events ===\n", label, snap.Count)
	fmt.Fprintf(w, "avg: %.2f   p50: %.2f   p95: %.2f   p99: %.2f\n", snap.Avg, snap.P50, snap.P95, snap.P99)
}
