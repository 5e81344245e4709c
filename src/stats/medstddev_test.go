package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestMedStdDevUnmasked(t *testing.T) {
	a := []float64{1, 3, 4, 5, 6, 7, 7}
	std, med := MedStdDev(a, nil)
	if !almostEqual(std, 2.2360679775, 1e-9) {
		t.Fatalf("std = %v want 2.2360679775", std)
	}
	if med != 5.0 {
		t.Fatalf("med = %v want 5.0", med)
	}
}

func TestMedStdDevWithMask(t *testing.T) {
	a := []float64{1, 3, 4, 5, 6, 7, 7}
	mask := []bool{true, true, true, false, false, false, false}
	std, med := MedStdDev(a, mask)
	if !almostEqual(std, 1.58113883008, 1e-9) {
		t.Fatalf("std = %v want 1.58113883008", std)
	}
	if med != 3.0 {
		t.Fatalf("med = %v want 3.0", med)
	}
}

func TestMedStdDevAutoExcludesNonFinite(t *testing.T) {
	a := []float64{math.NaN(), 1, 4, math.Inf(1), 6}
	std, med := MedStdDev(a, nil)
	if !almostEqual(std, 2.5495097567963922, 1e-12) {
		t.Fatalf("std = %v want 2.5495097567963922", std)
	}
	if med != 4.0 {
		t.Fatalf("med = %v want 4.0", med)
	}
}

func TestMedStdDevDegenerateCases(t *testing.T) {
	a := []float64{1, 4, 6}

	// one good value left: zero spread by definition
	mask := []bool{false, false, true}
	std, med := MedStdDev(a, mask)
	if std != 0.0 {
		t.Fatalf("single good value: std = %v want 0.0", std)
	}
	if med != 6.0 {
		t.Fatalf("single good value: med = %v want 6.0", med)
	}

	// no good values: both results NaN
	mask[2] = false
	std, med = MedStdDev(a, mask)
	if !math.IsNaN(std) || !math.IsNaN(med) {
		t.Fatalf("all masked: got (%v, %v) want (NaN, NaN)", std, med)
	}
}

func TestMedStdDevIdempotent(t *testing.T) {
	a := []float64{0.3, math.NaN(), 12.25, -4, 7, 7, 2.5}
	mask := []bool{true, true, false, true, true, true, true}
	std1, med1 := MedStdDev(a, mask)
	std2, med2 := MedStdDev(a, mask)
	if std1 != std2 || med1 != med2 {
		t.Fatalf("repeated call differs: (%v,%v) vs (%v,%v)", std1, med1, std2, med2)
	}
}

func TestMedStdDevEvenCountMedian(t *testing.T) {
	// four good values: median averages the two central ones
	a := []float64{1, 2, 4, 8}
	_, med := MedStdDev(a, nil)
	if med != 3.0 {
		t.Fatalf("med = %v want 3.0", med)
	}
}

func TestMedStdDevMaskLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on mask length mismatch")
		}
	}()
	MedStdDev([]float64{1, 2, 3}, []bool{true})
}

func TestMedStdDevColumns(t *testing.T) {
	v := [][]float64{
		{1, 10},
		{3, 20},
		{4, math.NaN()},
		{5, 40},
		{6, 50},
		{7, 60},
		{7, 70},
	}
	mask := [][]bool{
		{true, true},
		{true, true},
		{true, true},
		{true, true},
		{true, true},
		{true, true},
		{true, true},
	}
	std, med := MedStdDevColumns(v, mask)
	if len(std) != 2 || len(med) != 2 {
		t.Fatalf("expected 2 columns got %d/%d", len(std), len(med))
	}
	if !almostEqual(std[0], 2.2360679775, 1e-9) || med[0] != 5.0 {
		t.Fatalf("column 0 = (%v, %v) want (2.2360679775, 5.0)", std[0], med[0])
	}
	// column 1 loses the NaN row automatically: {10,20,40,50,60,70}
	if med[1] != 45.0 {
		t.Fatalf("column 1 med = %v want 45.0", med[1])
	}
}

func TestMaskedHelpers(t *testing.T) {
	v := []float64{2, 4, math.Inf(-1), 6}
	mask := []bool{true, true, true, true}
	if m := MaskedMean(v, mask); m != 4.0 {
		t.Fatalf("mean = %v want 4.0", m)
	}
	if m := MaskedMedian(v, mask); m != 4.0 {
		t.Fatalf("median = %v want 4.0", m)
	}
	// population std of {2,4,6} about mean 4 = sqrt(8/3)
	if s := MaskedStd(v, mask); !almostEqual(s, math.Sqrt(8.0/3.0), 1e-12) {
		t.Fatalf("std = %v want %v", s, math.Sqrt(8.0/3.0))
	}
	min, max := MaskedMinMax(v, mask)
	if min != 2 || max != 6 {
		t.Fatalf("minmax = (%v, %v) want (2, 6)", min, max)
	}
	min, max = MaskedMinMax(v, []bool{false, false, false, false})
	if !math.IsNaN(min) || !math.IsNaN(max) {
		t.Fatalf("empty minmax should be NaN, got (%v, %v)", min, max)
	}
}
