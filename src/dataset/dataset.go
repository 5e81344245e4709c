// Package dataset holds the stage-3 science products the quicklook figures
// read: background-subtracted flux cubes with their data-quality masks,
// extracted spectra, drift series and the supporting coordinate arrays. The
// plotting layer treats a Dataset as read-only.
package dataset

import "math"

// Dataset is one segment file's worth of reduced products. Cubes are indexed
// (integration, y, x); spectra (integration, x). Mask entries are true for
// good pixels. Optional products may be nil; figures that need an absent
// product report it instead of rendering.
type Dataset struct {
	Flux [][][]float64
	Mask [][][]bool
	BG   [][][]float64

	// Err and V0 are the per-pixel uncertainty and read-noise variance
	// cubes; DQ carries the upstream data-quality flag words. None of the
	// figures read them, but Save/Load round-trip them with the rest of
	// the segment.
	Err [][][]float64
	DQ  [][][]int32
	V0  [][][]float64

	MedFlux [][]float64

	StdSpec [][]float64
	OptSpec [][]float64
	OptErr  [][]float64
	OptMask [][]bool

	// Wave1D is the wavelength solution along x, in microns.
	Wave1D []float64

	// X and Y are absolute detector pixel coordinates of the subarray.
	X []int
	Y []int

	// Drift2D rows are (x, y) offsets per integration; ScanDir is 0 or 1.
	Drift2D    [][2]float64
	DriftUnits string
	ScanDir    []int

	DriftYPos   []float64
	DriftYWidth []float64

	// IntStart is the absolute index of this segment's first integration.
	IntStart int
}

// NInt is the number of integrations in the segment.
func (d *Dataset) NInt() int {
	if len(d.Flux) > 0 {
		return len(d.Flux)
	}
	return len(d.OptSpec)
}

// NY is the spatial height of the subarray.
func (d *Dataset) NY() int {
	if len(d.Flux) > 0 {
		return len(d.Flux[0])
	}
	if len(d.MedFlux) > 0 {
		return len(d.MedFlux)
	}
	return 0
}

// NX is the dispersion width of the subarray.
func (d *Dataset) NX() int {
	if len(d.Flux) > 0 && len(d.Flux[0]) > 0 {
		return len(d.Flux[0][0])
	}
	if len(d.MedFlux) > 0 {
		return len(d.MedFlux[0])
	}
	if len(d.OptSpec) > 0 {
		return len(d.OptSpec[0])
	}
	return len(d.Wave1D)
}

// GoodFrame returns integration n's flux frame with excluded or non-finite
// pixels replaced by NaN, the form the image panels want. When the mask cube
// is absent only non-finite values are blanked.
func (d *Dataset) GoodFrame(n int) [][]float64 {
	frame := d.Flux[n]
	var mask [][]bool
	if n < len(d.Mask) {
		mask = d.Mask[n]
	}
	out := make([][]float64, len(frame))
	for y, row := range frame {
		orow := make([]float64, len(row))
		for x, v := range row {
			if (mask != nil && !mask[y][x]) || math.IsNaN(v) || math.IsInf(v, 0) {
				orow[x] = math.NaN()
				continue
			}
			orow[x] = v
		}
		out[y] = orow
	}
	return out
}

// XRange returns the detector pixel extent along x: the attached coordinates
// when present, otherwise 0..NX-1.
func (d *Dataset) XRange() (min, max int) {
	if n := len(d.X); n > 0 {
		return d.X[0], d.X[n-1]
	}
	return 0, d.NX() - 1
}

// YRange is XRange for the spatial axis.
func (d *Dataset) YRange() (min, max int) {
	if n := len(d.Y); n > 0 {
		return d.Y[0], d.Y[n-1]
	}
	return 0, d.NY() - 1
}

// Trim slices every per-pixel product to the window [x0,x1) x [y0,y1) given
// in subarray coordinates, so cubes come out with shape
// (nint, y1-y0, x1-x0). Coordinate arrays, spectra and the wavelength
// solution follow the x window; per-integration series are untouched. The
// receiver keeps its backing arrays: Trim returns views, not copies.
func (d *Dataset) Trim(xwindow, ywindow [2]int) *Dataset {
	x0, x1 := xwindow[0], xwindow[1]
	y0, y1 := ywindow[0], ywindow[1]

	out := *d
	out.Flux = trimCube(d.Flux, x0, x1, y0, y1)
	out.BG = trimCube(d.BG, x0, x1, y0, y1)
	out.Err = trimCube(d.Err, x0, x1, y0, y1)
	out.V0 = trimCube(d.V0, x0, x1, y0, y1)
	out.DQ = trimIntCube(d.DQ, x0, x1, y0, y1)
	out.Mask = trimMaskCube(d.Mask, x0, x1, y0, y1)
	out.MedFlux = trimFrame(d.MedFlux, x0, x1, y0, y1)

	out.StdSpec = trimSpec(d.StdSpec, x0, x1)
	out.OptSpec = trimSpec(d.OptSpec, x0, x1)
	out.OptErr = trimSpec(d.OptErr, x0, x1)
	out.OptMask = trimMask(d.OptMask, x0, x1)

	if d.Wave1D != nil {
		out.Wave1D = d.Wave1D[x0:x1]
	}
	if d.X != nil {
		out.X = d.X[x0:x1]
	}
	if d.Y != nil {
		out.Y = d.Y[y0:y1]
	}
	return &out
}

func trimCube(c [][][]float64, x0, x1, y0, y1 int) [][][]float64 {
	if c == nil {
		return nil
	}
	out := make([][][]float64, len(c))
	for n, frame := range c {
		out[n] = trimFrame(frame, x0, x1, y0, y1)
	}
	return out
}

func trimIntCube(c [][][]int32, x0, x1, y0, y1 int) [][][]int32 {
	if c == nil {
		return nil
	}
	out := make([][][]int32, len(c))
	for n, frame := range c {
		rows := make([][]int32, y1-y0)
		for y := range rows {
			rows[y] = frame[y0+y][x0:x1]
		}
		out[n] = rows
	}
	return out
}

func trimMaskCube(c [][][]bool, x0, x1, y0, y1 int) [][][]bool {
	if c == nil {
		return nil
	}
	out := make([][][]bool, len(c))
	for n, frame := range c {
		rows := make([][]bool, y1-y0)
		for y := range rows {
			rows[y] = frame[y0+y][x0:x1]
		}
		out[n] = rows
	}
	return out
}

func trimFrame(f [][]float64, x0, x1, y0, y1 int) [][]float64 {
	if f == nil {
		return nil
	}
	rows := make([][]float64, y1-y0)
	for y := range rows {
		rows[y] = f[y0+y][x0:x1]
	}
	return rows
}

func trimSpec(s [][]float64, x0, x1 int) [][]float64 {
	if s == nil {
		return nil
	}
	out := make([][]float64, len(s))
	for n, row := range s {
		out[n] = row[x0:x1]
	}
	return out
}

func trimMask(s [][]bool, x0, x1 int) [][]bool {
	if s == nil {
		return nil
	}
	out := make([][]bool, len(s))
	for n, row := range s {
		out[n] = row[x0:x1]
	}
	return out
}
