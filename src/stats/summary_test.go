package stats

import (
	"math"
	"testing"
)

func TestPercentiles(t *testing.T) {
	v := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Percentiles(v, nil, []float64{0, 0.5, 1})
	if !almostEqual(got[0], 1, 1e-12) || !almostEqual(got[2], 10, 1e-12) {
		t.Fatalf("extreme quantiles = %v, want 1 and 10", got)
	}
	// Nearest-rank: the 5th of 10 ordered samples.
	if !almostEqual(got[1], 5, 1e-12) {
		t.Fatalf("median quantile = %v, want 5", got[1])
	}
}

func TestPercentilesMaskedAndEmpty(t *testing.T) {
	v := []float64{100, 1, 2, 3, math.NaN()}
	mask := []bool{false, true, true, true, true}
	got := Percentiles(v, mask, []float64{0.5})
	if !almostEqual(got[0], 2, 1e-12) {
		t.Fatalf("masked median = %v, want 2", got[0])
	}
	empty := Percentiles(nil, nil, []float64{0.5, 0.9})
	for i, q := range empty {
		if !math.IsNaN(q) {
			t.Fatalf("empty quantile %d = %v, want NaN", i, q)
		}
	}
}

func TestGoodFraction(t *testing.T) {
	v := []float64{1, math.NaN(), 3, 4}
	mask := []bool{true, true, false, true}
	if got := GoodFraction(v, mask); !almostEqual(got, 0.5, 1e-12) {
		t.Fatalf("GoodFraction = %v, want 0.5", got)
	}
	if got := GoodFraction(nil, nil); !math.IsNaN(got) {
		t.Fatalf("GoodFraction(nil) = %v, want NaN", got)
	}
}
