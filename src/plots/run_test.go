package plots

import (
	"math"
	"testing"

	"github.com/iafilius/SpectroQuicklook/src/dataset"
	"github.com/iafilius/SpectroQuicklook/src/meta"
)

func TestRenderAllWritesFigureSet(t *testing.T) {
	dir := t.TempDir()
	m := &meta.Meta{OutputDir: dir, HidePlots: true}
	m.Resolve()

	paths, err := RenderAll(testDataset(), m, 0)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	// source position, curvature, 3 frame pairs, 3 spectra, residual
	// background, median frame, 2D light curve, both drift series, 2D drift.
	if len(paths) != 14 {
		t.Fatalf("wrote %d figures, want 14: %v", len(paths), paths)
	}
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			t.Errorf("path %q written twice", p)
		}
		seen[p] = true
		assertFigure(t, p)
	}
	if math.IsNaN(m.MADppm) || m.MADppm < 0 {
		t.Errorf("MADppm = %v, want a measured scatter", m.MADppm)
	}
}

func TestRenderAllHonorsIntegrationWindow(t *testing.T) {
	dir := t.TempDir()
	m := &meta.Meta{OutputDir: dir, HidePlots: true, IntEnd: 1}
	m.Resolve()

	paths, err := RenderAll(testDataset(), m, 0)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	// One frame pair and one spectrum instead of three of each.
	if len(paths) != 10 {
		t.Fatalf("wrote %d figures, want 10: %v", len(paths), paths)
	}
}

func TestRenderAllSpectraOnly(t *testing.T) {
	dir := t.TempDir()
	m := &meta.Meta{OutputDir: dir, HidePlots: true}
	m.Resolve()

	full := testDataset()
	ds := &dataset.Dataset{
		StdSpec: full.StdSpec,
		OptSpec: full.OptSpec,
		OptErr:  full.OptErr,
		OptMask: full.OptMask,
		Wave1D:  full.Wave1D,
		X:       full.X,
	}
	paths, err := RenderAll(ds, m, 0)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	// Three spectra plus the 2D light curve; no frame products, no drifts.
	if len(paths) != 4 {
		t.Fatalf("wrote %d figures, want 4: %v", len(paths), paths)
	}
}

func TestTraceCenterOfLight(t *testing.T) {
	const ny, nx = 5, 4
	frame := make([][]float64, ny)
	for y := range frame {
		frame[y] = make([]float64, nx)
	}
	for x := 0; x < nx; x++ {
		frame[2][x] = 10
	}

	measured, smoothed, integer := traceCenterOfLight(frame)
	for x := 0; x < nx; x++ {
		if measured[x] != 2 {
			t.Errorf("measured[%d] = %v, want 2", x, measured[x])
		}
		if smoothed[x] != 2 {
			t.Errorf("smoothed[%d] = %v, want 2", x, smoothed[x])
		}
		if integer[x] != 2 {
			t.Errorf("integer[%d] = %v, want 2", x, integer[x])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := movingAverage([]float64{1, 2, 3}, 3)
	want := []float64{1.5, 2, 2.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("movingAverage[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	gapped := movingAverage([]float64{1, math.NaN(), 3}, 3)
	if gapped[0] != 1 || gapped[1] != 2 || gapped[2] != 3 {
		t.Errorf("movingAverage with gap = %v, want [1 2 3]", gapped)
	}
}

func TestLocateSource(t *testing.T) {
	row := []float64{0, 10, 100, 10, 0}
	brightest, weighted := locateSource(row)
	if brightest != 2 {
		t.Errorf("brightest = %d, want 2", brightest)
	}
	if math.Abs(weighted-2) > 1e-12 {
		t.Errorf("weighted = %v, want 2", weighted)
	}

	skewed := []float64{0, 0, 100, 300, 0}
	_, w := locateSource(skewed)
	if want := (2.0*100 + 3.0*300) / 400; math.Abs(w-want) > 1e-12 {
		t.Errorf("weighted = %v, want %v", w, want)
	}
}

func TestRowFluxProfile(t *testing.T) {
	frame := [][]float64{
		{1, 2, 3},
		{math.NaN(), math.NaN(), math.NaN()},
		{4, math.NaN(), 6},
	}
	got := rowFluxProfile(frame)
	if got[0] != 6 {
		t.Errorf("row 0 sum = %v, want 6", got[0])
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("row 1 sum = %v, want NaN", got[1])
	}
	if got[2] != 10 {
		t.Errorf("row 2 sum = %v, want 10", got[2])
	}
}
