package stats

import "math"

// NormalizeSpectrum divides each wavelength column of a spectrum stack
// (rows = integrations, columns = wavelength) by that column's masked
// temporal mean, so in-transit/out-of-transit structure shows up around 1.0.
// Masked or non-finite cells, and cells in columns without a usable mean,
// come back as NaN; callers render those in the sentinel color.
func NormalizeSpectrum(spec [][]float64, mask [][]bool) [][]float64 {
	if len(spec) == 0 {
		return nil
	}
	ncol := len(spec[0])
	colMean := make([]float64, ncol)
	col := make([]float64, len(spec))
	var colMask []bool
	if mask != nil {
		colMask = make([]bool, len(spec))
	}
	for j := 0; j < ncol; j++ {
		for i := range spec {
			col[i] = spec[i][j]
			if mask != nil {
				colMask[i] = mask[i][j]
			}
		}
		colMean[j] = MaskedMean(col, colMask)
	}
	out := make([][]float64, len(spec))
	for i := range spec {
		out[i] = make([]float64, ncol)
		for j := 0; j < ncol; j++ {
			v := spec[i][j]
			m := colMean[j]
			if (mask != nil && !mask[i][j]) || !isFinite(v) || !isFinite(m) || m == 0 {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = v / m
		}
	}
	return out
}

// MADppm is the rolling scatter statistic reported in the 2D light-curve
// title: normalize each wavelength column by its temporal median, take the
// median absolute consecutive difference along wavelength within each
// integration (in parts per million), and average those over integrations.
// Integrations with no usable differences are skipped; NaN when none remain.
func MADppm(spec [][]float64, mask [][]bool) float64 {
	if len(spec) == 0 {
		return math.NaN()
	}
	ncol := len(spec[0])
	colMed := make([]float64, ncol)
	col := make([]float64, len(spec))
	var colMask []bool
	if mask != nil {
		colMask = make([]bool, len(spec))
	}
	for j := 0; j < ncol; j++ {
		for i := range spec {
			col[i] = spec[i][j]
			if mask != nil {
				colMask[i] = mask[i][j]
			}
		}
		colMed[j] = MaskedMedian(col, colMask)
	}

	var sum float64
	var count int
	norm := make([]float64, ncol)
	diffs := make([]float64, 0, ncol)
	for i := range spec {
		for j := 0; j < ncol; j++ {
			v := spec[i][j]
			m := colMed[j]
			if (mask != nil && !mask[i][j]) || !isFinite(v) || !isFinite(m) || m == 0 {
				norm[j] = math.NaN()
				continue
			}
			norm[j] = v / m
		}
		diffs = diffs[:0]
		for j := 0; j+1 < ncol; j++ {
			if isFinite(norm[j]) && isFinite(norm[j+1]) {
				diffs = append(diffs, math.Abs(norm[j+1]-norm[j]))
			}
		}
		if len(diffs) == 0 {
			continue
		}
		sum += 1e6 * MaskedMedian(diffs, nil)
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Gaussian evaluates a*exp(-(x-mu)^2/(2*sigma^2)) + off, the model the
// centering fit uses for the spatial profile.
func Gaussian(x, a, mu, sigma, off float64) float64 {
	d := x - mu
	return a*math.Exp(-d*d/(2*sigma*sigma)) + off
}

// TimeMedianFrame collapses a cube (integration, y, x) to one frame of
// per-pixel masked medians over the time axis. Pixels good in no
// integration come back NaN.
func TimeMedianFrame(cube [][][]float64, mask [][][]bool) [][]float64 {
	if len(cube) == 0 {
		return nil
	}
	ny := len(cube[0])
	nx := 0
	if ny > 0 {
		nx = len(cube[0][0])
	}
	out := make([][]float64, ny)
	col := make([]float64, len(cube))
	var colMask []bool
	if mask != nil {
		colMask = make([]bool, len(cube))
	}
	for y := 0; y < ny; y++ {
		out[y] = make([]float64, nx)
		for x := 0; x < nx; x++ {
			for n := range cube {
				col[n] = cube[n][y][x]
				if mask != nil {
					colMask[n] = mask[n][y][x]
				}
			}
			out[y][x] = MaskedMedian(col, colMask)
		}
	}
	return out
}

// RowBandMedians returns, for each row of a frame, the median of the finite
// values in columns [x0,x1). Used to collapse a narrow column band into a
// vertical profile.
func RowBandMedians(frame [][]float64, x0, x1 int) []float64 {
	if x0 < 0 {
		x0 = 0
	}
	out := make([]float64, len(frame))
	for y, row := range frame {
		hi := x1
		if hi > len(row) {
			hi = len(row)
		}
		var band []float64
		if x0 < hi {
			band = row[x0:hi]
		}
		out[y] = MaskedMedian(band, nil)
	}
	return out
}

// Flatten3 flattens a cube and its mask into parallel slices for whole-cube
// statistics. mask may be nil, in which case the returned mask is nil too.
func Flatten3(cube [][][]float64, mask [][][]bool) ([]float64, []bool) {
	var vals []float64
	var flat []bool
	for n := range cube {
		for y := range cube[n] {
			vals = append(vals, cube[n][y]...)
			if mask != nil {
				flat = append(flat, mask[n][y]...)
			}
		}
	}
	if mask == nil {
		return vals, nil
	}
	return vals, flat
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
