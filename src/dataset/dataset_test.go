package dataset

import (
	"math"
	"path/filepath"
	"testing"
)

func onesCube(nint, ny, nx int) [][][]float64 {
	c := make([][][]float64, nint)
	for n := range c {
		c[n] = make([][]float64, ny)
		for y := range c[n] {
			row := make([]float64, nx)
			for x := range row {
				row[x] = 1
			}
			c[n][y] = row
		}
	}
	return c
}

func zeroDQ(nint, ny, nx int) [][][]int32 {
	c := make([][][]int32, nint)
	for n := range c {
		c[n] = make([][]int32, ny)
		for y := range c[n] {
			c[n][y] = make([]int32, nx)
		}
	}
	return c
}

func trueMask(nint, ny, nx int) [][][]bool {
	m := make([][][]bool, nint)
	for n := range m {
		m[n] = make([][]bool, ny)
		for y := range m[n] {
			m[n][y] = make([]bool, nx)
			for x := range m[n][y] {
				m[n][y][x] = true
			}
		}
	}
	return m
}

func TestTrimShapes(t *testing.T) {
	const (
		nint = 7
		ny   = 20
		nx   = 100
	)
	d := &Dataset{
		Flux: onesCube(nint, ny, nx),
		Mask: trueMask(nint, ny, nx),
		BG:   onesCube(nint, ny, nx),
		Err:  onesCube(nint, ny, nx),
		DQ:   zeroDQ(nint, ny, nx),
	}
	sub := d.Trim([2]int{10, 90}, [2]int{2, 14})

	if got := sub.NInt(); got != nint {
		t.Errorf("NInt = %d, want %d", got, nint)
	}
	if got := sub.NY(); got != 12 {
		t.Errorf("NY = %d, want 12", got)
	}
	if got := sub.NX(); got != 80 {
		t.Errorf("NX = %d, want 80", got)
	}
	if len(sub.Mask) != nint || len(sub.Mask[0]) != 12 || len(sub.Mask[0][0]) != 80 {
		t.Errorf("Mask shape = (%d,%d,%d), want (7,12,80)",
			len(sub.Mask), len(sub.Mask[0]), len(sub.Mask[0][0]))
	}
	if len(sub.BG[3]) != 12 {
		t.Errorf("BG rows = %d, want 12", len(sub.BG[3]))
	}
	if len(sub.Err[0][0]) != 80 || len(sub.DQ[0]) != 12 {
		t.Errorf("Err/DQ shapes = %dx%d", len(sub.Err[0][0]), len(sub.DQ[0]))
	}
	// The original cube is untouched.
	if d.NY() != ny || d.NX() != nx {
		t.Errorf("Trim mutated the receiver: %dx%d", d.NY(), d.NX())
	}
}

func TestTrimCoordsAndSpectraFollow(t *testing.T) {
	nx := 10
	wave := make([]float64, nx)
	xs := make([]int, nx)
	for i := range wave {
		wave[i] = 1.0 + 0.1*float64(i)
		xs[i] = 40 + i
	}
	ys := []int{5, 6, 7, 8}
	d := &Dataset{
		Flux:    onesCube(2, 4, nx),
		StdSpec: [][]float64{make([]float64, nx), make([]float64, nx)},
		Wave1D:  wave,
		X:       xs,
		Y:       ys,
	}
	sub := d.Trim([2]int{2, 8}, [2]int{1, 3})

	if xmin, xmax := sub.XRange(); xmin != 42 || xmax != 47 {
		t.Errorf("XRange = %d..%d, want 42..47", xmin, xmax)
	}
	if ymin, ymax := sub.YRange(); ymin != 6 || ymax != 7 {
		t.Errorf("YRange = %d..%d, want 6..7", ymin, ymax)
	}
	if len(sub.Wave1D) != 6 || sub.Wave1D[0] != 1.2 {
		t.Errorf("Wave1D = %v", sub.Wave1D)
	}
	if len(sub.StdSpec[0]) != 6 {
		t.Errorf("StdSpec width = %d, want 6", len(sub.StdSpec[0]))
	}
}

func TestGoodFrameBlanksExcludedPixels(t *testing.T) {
	d := &Dataset{
		Flux: onesCube(2, 3, 4),
		Mask: trueMask(2, 3, 4),
	}
	d.Flux[1][0][2] = math.Inf(1)
	d.Mask[1][2][1] = false

	frame := d.GoodFrame(1)
	if !math.IsNaN(frame[0][2]) {
		t.Errorf("non-finite pixel = %v, want NaN", frame[0][2])
	}
	if !math.IsNaN(frame[2][1]) {
		t.Errorf("excluded pixel = %v, want NaN", frame[2][1])
	}
	if frame[1][1] != 1 {
		t.Errorf("good pixel = %v, want 1", frame[1][1])
	}
	// The frame is a copy: the cube keeps its values.
	if d.Flux[1][2][1] != 1 {
		t.Errorf("GoodFrame mutated the cube: %v", d.Flux[1][2][1])
	}
}

func TestRangeFallsBackToShape(t *testing.T) {
	d := &Dataset{Flux: onesCube(1, 3, 5)}
	if xmin, xmax := d.XRange(); xmin != 0 || xmax != 4 {
		t.Errorf("XRange = %d..%d, want 0..4", xmin, xmax)
	}
	if ymin, ymax := d.YRange(); ymin != 0 || ymax != 2 {
		t.Errorf("YRange = %d..%d, want 0..2", ymin, ymax)
	}
}

func sampleDataset() *Dataset {
	const (
		nint = 2
		ny   = 3
		nx   = 4
	)
	d := &Dataset{
		Flux:        onesCube(nint, ny, nx),
		Mask:        trueMask(nint, ny, nx),
		BG:          onesCube(nint, ny, nx),
		Err:         onesCube(nint, ny, nx),
		DQ:          zeroDQ(nint, ny, nx),
		V0:          onesCube(nint, ny, nx),
		MedFlux:     [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}},
		StdSpec:     [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}},
		OptSpec:     [][]float64{{2, 3, 4, 5}, {6, 7, 8, 9}},
		OptErr:      [][]float64{{0.1, 0.2, 0.3, 0.4}, {0.5, 0.6, 0.7, 0.8}},
		OptMask:     [][]bool{{true, true, false, true}, {true, false, true, true}},
		Wave1D:      []float64{1.1, 1.2, 1.3, 1.4},
		Drift2D:     [][2]float64{{0.1, -0.2}, {0.3, 0.4}},
		DriftUnits:  "pixels",
		ScanDir:     []int{0, 1},
		DriftYPos:   []float64{15.2, 15.3},
		DriftYWidth: []float64{1.9, 2.0},
		IntStart:    120,
	}
	d.Flux[1][2][3] = 42.5
	d.Mask[0][1][2] = false
	d.Err[0][0][1] = 0.25
	d.DQ[1][1][1] = 4
	d.V0[1][0][2] = 12.5
	d.X = []int{40, 41, 42, 43}
	d.Y = []int{7, 8, 9}
	return d
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.fits")
	d := sampleDataset()
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.NInt() != 2 || got.NY() != 3 || got.NX() != 4 {
		t.Fatalf("shape = (%d,%d,%d), want (2,3,4)", got.NInt(), got.NY(), got.NX())
	}
	if got.IntStart != 120 {
		t.Errorf("IntStart = %d, want 120", got.IntStart)
	}
	if got.DriftUnits != "pixels" {
		t.Errorf("DriftUnits = %q, want pixels", got.DriftUnits)
	}
	if got.Flux[1][2][3] != 42.5 {
		t.Errorf("Flux[1][2][3] = %v, want 42.5", got.Flux[1][2][3])
	}
	if got.Mask[0][1][2] || !got.Mask[0][0][0] {
		t.Errorf("Mask did not round-trip: %v", got.Mask[0])
	}
	if got.Err[0][0][1] != 0.25 || got.DQ[1][1][1] != 4 || got.V0[1][0][2] != 12.5 {
		t.Errorf("Err/DQ/V0 did not round-trip: %v %v %v",
			got.Err[0][0][1], got.DQ[1][1][1], got.V0[1][0][2])
	}
	if got.MedFlux[2][1] != 10 {
		t.Errorf("MedFlux[2][1] = %v, want 10", got.MedFlux[2][1])
	}
	if got.OptSpec[1][0] != 6 || got.OptErr[0][3] != 0.4 {
		t.Errorf("spectra did not round-trip: %v %v", got.OptSpec, got.OptErr)
	}
	if got.OptMask[0][2] || !got.OptMask[0][3] {
		t.Errorf("OptMask did not round-trip: %v", got.OptMask)
	}
	if math.Abs(got.Wave1D[2]-1.3) > 1e-12 {
		t.Errorf("Wave1D[2] = %v, want 1.3", got.Wave1D[2])
	}
	if got.Drift2D[1] != [2]float64{0.3, 0.4} {
		t.Errorf("Drift2D[1] = %v", got.Drift2D[1])
	}
	if got.ScanDir[1] != 1 {
		t.Errorf("ScanDir = %v", got.ScanDir)
	}
	if got.DriftYPos[0] != 15.2 || got.DriftYWidth[1] != 2.0 {
		t.Errorf("drift series did not round-trip: %v %v", got.DriftYPos, got.DriftYWidth)
	}
	// Coordinates rebuilt from the header cards.
	if xmin, xmax := got.XRange(); xmin != 40 || xmax != 43 {
		t.Errorf("XRange = %d..%d, want 40..43", xmin, xmax)
	}
	if ymin, _ := got.YRange(); ymin != 7 {
		t.Errorf("YRange min = %d, want 7", ymin)
	}
}

func TestSaveSkipsAbsentProducts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectra_only.fits")
	d := &Dataset{
		OptSpec: [][]float64{{1, 2, 3}},
		Wave1D:  []float64{1.0, 1.1, 1.2},
	}
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Flux != nil || got.BG != nil || got.MedFlux != nil {
		t.Errorf("absent products loaded non-nil")
	}
	if got.NInt() != 1 || got.NX() != 3 {
		t.Errorf("shape from spectra = (%d,%d)", got.NInt(), got.NX())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.fits")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}
