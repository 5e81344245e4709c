package plots

import (
	"math"
	"time"

	"github.com/iafilius/SpectroQuicklook/src/dataset"
	"github.com/iafilius/SpectroQuicklook/src/meta"
	"github.com/iafilius/SpectroQuicklook/src/pipeline"
	"github.com/iafilius/SpectroQuicklook/src/stats"
)

// RenderAll draws every quicklook figure the dataset carries products for,
// in reduction order, and returns the paths written. Figures whose products
// are absent are skipped; the first rendering failure aborts the run. The
// light curve scatter is measured before the 2D light curve so its title can
// carry the value.
func RenderAll(ds *dataset.Dataset, m *meta.Meta, fileIndex int) ([]string, error) {
	for _, w := range m.Resolve() {
		pipeline.Warnf("%s", w)
	}
	defer pipeline.TimeTrack(time.Now(), "quicklook figures")

	r := &Renderer{Meta: m}
	var written []string
	add := func(path string, err error) error {
		if err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	pipeline.Infof("rendering quicklook figures for file %d into %s", fileIndex, m.FigsDir())

	var medframe [][]float64
	if len(ds.Flux) > 0 {
		medframe = stats.TimeMedianFrame(ds.Flux, ds.Mask)
	}

	// The source position and trace shape both come off the median frame.
	if medframe != nil {
		rowFlux := rowFluxProfile(medframe)
		brightest, weighted := locateSource(rowFlux)
		sp := SourcePositionData{
			RowFlux:      rowFlux,
			BrightestRow: brightest,
			NRows:        len(rowFlux),
			WeightedRow:  &weighted,
		}
		if err := add(r.SourcePosition(sp, fileIndex, 0)); err != nil {
			return written, err
		}
		measured, smoothed, integer := traceCenterOfLight(medframe)
		if err := add(r.TraceCurvature(measured, smoothed, integer)); err != nil {
			return written, err
		}
	}

	if len(ds.Flux) > 0 && len(ds.BG) > 0 {
		paths, err := r.ImageAndBackground(ds, fileIndex)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	if len(ds.OptSpec) > 0 {
		count := r.frameCount(ds)
		if count > len(ds.OptSpec) {
			count = len(ds.OptSpec)
		}
		for n := 0; n < count; n++ {
			if err := add(r.Spectrum(ds, n, fileIndex)); err != nil {
				return written, err
			}
		}
	}

	if len(ds.Flux) > 0 {
		if err := add(r.ResidualBackground(ds, fileIndex, -200, 1000)); err != nil {
			return written, err
		}
	}
	if len(ds.MedFlux) > 0 {
		if err := add(r.MedianFrame(ds)); err != nil {
			return written, err
		}
	}

	if len(ds.OptSpec) > 0 && len(ds.Wave1D) > 0 {
		m.MADppm = stats.MADppm(ds.OptSpec, ds.OptMask)
		pipeline.Infof("light curve scatter: %.1f ppm", m.MADppm)
		if err := add(r.LightCurve2D(ds)); err != nil {
			return written, err
		}
	}
	if len(ds.DriftYPos) > 0 {
		if err := add(r.DriftYPos(ds)); err != nil {
			return written, err
		}
	}
	if len(ds.DriftYWidth) > 0 {
		if err := add(r.DriftYWidth(ds)); err != nil {
			return written, err
		}
	}
	if len(ds.Drift2D) > 0 {
		if err := add(r.Drift2D(ds)); err != nil {
			return written, err
		}
	}

	pipeline.Infof("wrote %d figures", len(written))
	return written, nil
}

// frameCount is how many integrations the per-integration figures cover: the
// configured int_start..int_end window, clamped to what the cube holds.
func (r *Renderer) frameCount(ds *dataset.Dataset) int {
	n := ds.NInt()
	if r.Meta != nil && r.Meta.IntEnd > r.Meta.IntStart {
		if w := r.Meta.IntEnd - r.Meta.IntStart; w < n {
			n = w
		}
	}
	return n
}

// rowFluxProfile sums the median frame along the dispersion axis, giving the
// spatial profile the source position is located on.
func rowFluxProfile(frame [][]float64) []float64 {
	out := make([]float64, len(frame))
	for y, row := range frame {
		var sum float64
		any := false
		for _, v := range row {
			if !isFinite(v) {
				continue
			}
			sum += v
			any = true
		}
		if !any {
			out[y] = nan
			continue
		}
		out[y] = sum
	}
	return out
}

// locateSource finds the brightest row and the flux-weighted center of the
// spatial profile.
func locateSource(rowFlux []float64) (brightest int, weighted float64) {
	best := math.Inf(-1)
	var sum, wsum float64
	for y, v := range rowFlux {
		if !isFinite(v) {
			continue
		}
		if v > best {
			best = v
			brightest = y
		}
		if v > 0 {
			sum += v
			wsum += v * float64(y)
		}
	}
	if sum > 0 {
		weighted = wsum / sum
	} else {
		weighted = float64(brightest)
	}
	return brightest, weighted
}

// traceCenterOfLight measures the flux-weighted row center per column of the
// median frame, smooths it with a five-column moving average, and rounds the
// smoothed curve to whole pixels.
func traceCenterOfLight(frame [][]float64) (measured, smoothed, integer []float64) {
	ny := len(frame)
	if ny == 0 {
		return nil, nil, nil
	}
	nx := len(frame[0])
	measured = make([]float64, nx)
	for x := 0; x < nx; x++ {
		var sum, wsum float64
		for y := 0; y < ny; y++ {
			v := frame[y][x]
			if !isFinite(v) || v <= 0 {
				continue
			}
			sum += v
			wsum += v * float64(y)
		}
		if sum == 0 {
			measured[x] = nan
			continue
		}
		measured[x] = wsum / sum
	}
	smoothed = movingAverage(measured, 5)
	integer = make([]float64, nx)
	for i, v := range smoothed {
		if !isFinite(v) {
			integer[i] = nan
			continue
		}
		integer[i] = math.Round(v)
	}
	return measured, smoothed, integer
}

// movingAverage smooths v with a centered window of width w, shrinking the
// window at the edges and skipping non-finite samples.
func movingAverage(v []float64, w int) []float64 {
	out := make([]float64, len(v))
	half := w / 2
	for i := range v {
		var sum float64
		var n int
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= len(v) || !isFinite(v[j]) {
				continue
			}
			sum += v[j]
			n++
		}
		if n == 0 {
			out[i] = nan
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}
