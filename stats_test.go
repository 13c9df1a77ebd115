package main

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	// i = (50/100)*3 = 1.5 -> halfway between 20 and 30
	if got := percentile(sorted, 50); !approxEqual(got, 25) {
		t.Errorf("p50 = %v, want 25", got)
	}
	// i = (95/100)*3 = 2.85 -> 30*0.15 + 40*0.85
	if got := percentile(sorted, 95); !approxEqual(got, 38.5) {
		t.Errorf("p95 = %v, want 38.5", got)
	}
}

func TestPercentileBoundaries(t *testing.T) {
	sorted := []float64{5, 15, 25, 35, 45}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"zero is minimum", 0, 5},
		{"negative is minimum", -10, 5},
		{"hundred is maximum", 100, 45},
		{"above hundred is maximum", 150, 45},
		{"median of odd-sized set is middle element", 50, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(sorted, tt.p); !approxEqual(got, tt.want) {
				t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile of empty slice = %v, want 0", got)
	}
}

func TestSnapshotOrdering(t *testing.T) {
	stats := NewLatencyStats(0)
	for _, v := range []float64{130, 7, 42, 3, 999, 58, 58, 12, 250, 1} {
		stats.Record(v)
	}

	snap, ok := stats.Snapshot()
	if !ok {
		t.Fatal("Snapshot returned ok=false for non-empty collection")
	}

	if snap.P50 > snap.P95 || snap.P95 > snap.P99 {
		t.Errorf("percentiles out of order: p50=%v p95=%v p99=%v", snap.P50, snap.P95, snap.P99)
	}
	if snap.P50 < 1 || snap.P99 > 999 {
		t.Errorf("percentiles outside sample range: p50=%v p99=%v", snap.P50, snap.P99)
	}
}

func TestSnapshotAvgAndCount(t *testing.T) {
	stats := NewLatencyStats(0)
	for _, v := range []float64{10, 20, 30} {
		stats.Record(v)
	}

	snap, ok := stats.Snapshot()
	if !ok {
		t.Fatal("Snapshot returned ok=false")
	}
	if snap.Count != 3 {
		t.Errorf("Count = %d, want 3", snap.Count)
	}
	if !approxEqual(snap.Avg, 20) {
		t.Errorf("Avg = %v, want 20", snap.Avg)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	stats := NewLatencyStats(0)
	if _, ok := stats.Snapshot(); ok {
		t.Error("Snapshot returned ok=true for empty collection")
	}
}

// Snapshot sorts a copy; the collection itself must keep arrival order.
func TestSnapshotPreservesArrivalOrder(t *testing.T) {
	stats := NewLatencyStats(0)
	input := []float64{30, 10, 20}
	for _, v := range input {
		stats.Record(v)
	}

	if _, ok := stats.Snapshot(); !ok {
		t.Fatal("Snapshot returned ok=false")
	}

	if sort.Float64sAreSorted(stats.samples) {
		t.Errorf("sample collection was sorted in place: %v", stats.samples)
	}
	for i, v := range input {
		if stats.samples[i] != v {
			t.Errorf("samples[%d] = %v, want %v", i, stats.samples[i], v)
		}
	}
}

func TestSnapshotPrint(t *testing.T) {
	snap := Snapshot{Count: 4, Avg: 25, P50: 25, P95: 38.5, P99: 39.7}

	var rolling bytes.Buffer
	snap.Print(&rolling, false)
	wantRolling := "=== Rolling Latency Stats (usec) over 4 events ===\n" +
		"avg: 25.00   p50: 25.00   p95: 38.50   p99: 39.70\n"
	if rolling.String() != wantRolling {
		t.Errorf("rolling block:\ngot  %q\nwant %q", rolling.String(), wantRolling)
	}

	var final bytes.Buffer
	snap.Print(&final, true)
	if !strings.HasPrefix(final.String(), "\n=== Final Latency Stats (usec) over 4 events ===\n") {
		t.Errorf("final block missing separator/header: %q", final.String())
	}
}
