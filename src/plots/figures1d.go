package plots

import (
	"fmt"
	"image"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/iafilius/SpectroQuicklook/src/dataset"
	"github.com/iafilius/SpectroQuicklook/src/stats"
)

// GaussianFit holds the parameters of a Gaussian fitted to the spatial
// profile: Amp*exp(-(x-Mu)^2/(2*Sigma^2)) + Off.
type GaussianFit struct {
	Amp   float64
	Mu    float64
	Sigma float64
	Off   float64
}

// SourcePositionData carries what the source position figure shows. Gauss
// and WeightedRow are optional; whichever the position-finding step produced
// gets drawn alongside the row flux profile.
type SourcePositionData struct {
	RowFlux      []float64
	BrightestRow int
	NRows        int
	Gauss        *GaussianFit
	WeightedRow  *float64
}

// SourcePosition plots the summed flux per detector row and the located
// source position (fig 3102).
func (r *Renderer) SourcePosition(data SourcePositionData, fileIndex, n int) (string, error) {
	if len(data.RowFlux) == 0 {
		return "", fmt.Errorf("fig3102: no row flux profile")
	}
	xs, ys := finitePoints(indexSeq(len(data.RowFlux)), data.RowFlux)
	if len(xs) == 0 {
		return "", fmt.Errorf("fig3102: no finite row flux values")
	}
	xs, ys = ensureSpan(xs, ys)
	lo, hi, _ := finiteRange(ys)

	series := []chart.Series{
		chart.ContinuousSeries{Name: "Data", XValues: xs, YValues: ys, Style: pointStyle(colorData)},
	}
	var xrange chart.Range
	if g := data.Gauss; g != nil {
		gx := make([]float64, 500)
		gy := make([]float64, 500)
		span := float64(data.NRows)
		for i := range gx {
			gx[i] = span * float64(i) / float64(len(gx)-1)
			gy[i] = stats.Gaussian(gx[i], g.Amp, g.Mu, g.Sigma, g.Off)
		}
		if glo, ghi, ok := finiteRange(gy); ok {
			if glo < lo {
				lo = glo
			}
			if ghi > hi {
				hi = ghi
			}
		}
		series = append(series,
			chart.ContinuousSeries{Name: "Gaussian Fit", XValues: gx, YValues: gy, Style: lineStyle(colorStd)},
			verticalMarker("Gaussian Center", g.Mu, lo, hi, dottedStyle(colorOpt)))
		if hw := float64(r.Meta.SpecHW); hw > 0 {
			xrange = &chart.ContinuousRange{
				Min: float64(data.BrightestRow) - hw,
				Max: float64(data.BrightestRow) + hw,
			}
		}
	} else if data.WeightedRow != nil {
		series = append(series, verticalMarker("Weighted Row", *data.WeightedRow, lo, hi, lineStyle(colorStd)))
	}
	series = append(series, verticalMarker("Brightest Row", float64(data.BrightestRow), lo, hi, dashedStyle(colorOutlier)))

	ch := chart.Chart{
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chartPadding(),
		XAxis:      chart.XAxis{Name: "Row Pixel Position"},
		YAxis:      chart.YAxis{Name: "Row Flux"},
		Series:     series,
	}
	if xrange != nil {
		ch.XAxis.Range = xrange
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	img, err := chartImage(ch)
	if err != nil {
		return "", fmt.Errorf("fig3102: %w", err)
	}
	return r.saveFigure(img, TagSourcePosition, "source_pos", pauseLong,
		FileIndex(fileIndex, r.fileCount()), IntIndex(n, r.intCount(n+1)))
}

// integrationSeries renders one per-integration quantity as a dot series
// against integration number.
func (r *Renderer) integrationSeries(vals []float64, tag Tag, label, ylabel string) (string, error) {
	if len(vals) == 0 {
		return "", fmt.Errorf("fig%d: dataset has no %s", tag, label)
	}
	xs, ys := finitePoints(indexSeq(len(vals)), vals)
	if len(xs) == 0 {
		return "", fmt.Errorf("fig%d: no finite %s values", tag, label)
	}
	xs, ys = ensureSpan(xs, ys)
	ch := chart.Chart{
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chartPadding(),
		XAxis:      chart.XAxis{Name: "Integration Number"},
		YAxis:      chart.YAxis{Name: ylabel},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys, Style: smallPointStyle(colorData)},
		},
	}
	img, err := chartImage(ch)
	if err != nil {
		return "", fmt.Errorf("fig%d: %w", tag, err)
	}
	return r.saveFigure(img, tag, label, pauseLong)
}

// DriftYPos plots the fitted spatial profile center per integration
// (fig 3103).
func (r *Renderer) DriftYPos(ds *dataset.Dataset) (string, error) {
	return r.integrationSeries(ds.DriftYPos, TagDriftYPos, "DriftYPos",
		"Spectrum spatial profile center")
}

// DriftYWidth plots the fitted spatial profile width per integration
// (fig 3104).
func (r *Renderer) DriftYWidth(ds *dataset.Dataset) (string, error) {
	return r.integrationSeries(ds.DriftYWidth, TagDriftYWidth, "DriftYWidth",
		"Spectrum spatial profile width")
}

// Drift2D plots the measured drift along each detector axis per integration,
// split by scan direction, in two stacked panels (fig 3105).
func (r *Renderer) Drift2D(ds *dataset.Dataset) (string, error) {
	if len(ds.Drift2D) == 0 {
		return "", fmt.Errorf("fig3105: dataset has no 2D drift")
	}
	units := ds.DriftUnits
	if units == "" {
		units = "pixels"
	}
	dirColors := []drawing.Color{colorData, colorStd}
	panel := func(component int, ylabel, xlabel string) (image.Image, error) {
		var series []chart.Series
		for p := 0; p < 2; p++ {
			var xs, ys []float64
			for i := range ds.Drift2D {
				if scanDirOf(ds, i) != p {
					continue
				}
				xs = append(xs, float64(i))
				ys = append(ys, ds.Drift2D[i][component])
			}
			xs, ys = finitePoints(xs, ys)
			if len(xs) == 0 {
				continue
			}
			xs, ys = ensureSpan(xs, ys)
			series = append(series, chart.ContinuousSeries{
				XValues: xs, YValues: ys, Style: smallPointStyle(dirColors[p]),
			})
		}
		if len(series) == 0 {
			return nil, fmt.Errorf("no finite drift values")
		}
		ch := chart.Chart{
			Width:      chartWidth,
			Height:     chartHeight/2 + 60,
			Background: chartPadding(),
			XAxis:      chart.XAxis{Name: xlabel},
			YAxis:      chart.YAxis{Name: ylabel},
			Series:     series,
		}
		return chartImage(ch)
	}

	top, err := panel(1, fmt.Sprintf("Drift Along y (%s)", units), "")
	if err != nil {
		return "", fmt.Errorf("fig3105: %w", err)
	}
	bottom, err := panel(0, fmt.Sprintf("Drift Along x (%s)", units), "Integration Number")
	if err != nil {
		return "", fmt.Errorf("fig3105: %w", err)
	}
	return r.saveFigure(stackVertical(top, bottom), TagDrift2D, "Drift2D", pauseLong)
}

func scanDirOf(ds *dataset.Dataset, i int) int {
	if i < len(ds.ScanDir) {
		return ds.ScanDir[i]
	}
	return 0
}

// TraceCurvature plots the measured trace center per column together with
// the smoothed curve and its integer rounding (fig 3106).
func (r *Renderer) TraceCurvature(measured, smoothed, integer []float64) (string, error) {
	if len(measured) == 0 {
		return "", fmt.Errorf("fig3106: no trace measurements")
	}
	cm := moreland.Kindlmann()
	xs := indexSeq(len(measured))

	mx, my := finitePoints(xs, measured)
	mx, my = ensureSpan(mx, my)
	if len(mx) == 0 {
		return "", fmt.Errorf("fig3106: no finite trace measurements")
	}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "Measured", XValues: mx, YValues: my,
			Style: pointStyle(paletteColor(cm, 0.25))},
	}
	if sx, sy := finitePoints(indexSeq(len(smoothed)), smoothed); len(sx) > 0 {
		sx, sy = ensureSpan(sx, sy)
		series = append(series, chart.ContinuousSeries{Name: "Smoothed", XValues: sx, YValues: sy,
			Style: lineStyle(paletteColor(cm, 0.98))})
	}
	if ix, iy := finitePoints(indexSeq(len(integer)), integer); len(ix) > 0 {
		ix, iy = ensureSpan(ix, iy)
		series = append(series, chart.ContinuousSeries{Name: "Integer", XValues: ix, YValues: iy,
			Style: smallPointStyle(paletteColor(cm, 0.7))})
	}

	ch := chart.Chart{
		Title:      "Trace Curvature",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chartPadding(),
		XAxis:      chart.XAxis{Name: "Relative Pixel Position"},
		YAxis:      chart.YAxis{Name: "Relative Pixel Position"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	img, err := chartImage(ch)
	if err != nil {
		return "", fmt.Errorf("fig3106: %w", err)
	}
	return r.saveFigure(img, TagTraceCurvature, "Curvature", pauseShort)
}

// Spectrum plots the standard and optimal 1D extractions of one integration
// on a logarithmic flux axis (fig 3302).
func (r *Renderer) Spectrum(ds *dataset.Dataset, n, fileIndex int) (string, error) {
	if n < 0 || n >= len(ds.OptSpec) {
		return "", fmt.Errorf("fig3302: integration %d out of range", n)
	}
	xs := xCoords(ds)
	var series []chart.Series
	scaleRef := [][]float64{ds.OptSpec[n]}

	if n < len(ds.StdSpec) {
		sx, sy := positivePoints(xs, ds.StdSpec[n])
		if len(sx) > 0 {
			sx, sy = ensureSpan(sx, sy)
			series = append(series, chart.ContinuousSeries{
				Name: "Standard Spec", XValues: sx, YValues: sy, Style: lineStyle(colorStd),
			})
			scaleRef = append(scaleRef, ds.StdSpec[n])
		}
	}

	opt := ds.OptSpec[n]
	ox, oy := positivePoints(xs, opt)
	if len(ox) == 0 {
		return "", fmt.Errorf("fig3302: integration %d has no positive optimal flux", n)
	}
	ox, oy = ensureSpan(ox, oy)

	lo := positiveFloor(scaleRef...)
	_, hi, _ := finiteRange(scaleRef...)
	floor := lo * 0.9

	if n < len(ds.OptErr) && ds.OptErr[n] != nil {
		upper := make([]float64, len(opt))
		lower := make([]float64, len(opt))
		for i, v := range opt {
			e := ds.OptErr[n][i]
			upper[i] = v + e
			lower[i] = v - e
			if lower[i] <= 0 {
				lower[i] = floor
			}
		}
		if ux, uy := positivePoints(xs, upper); len(ux) > 1 {
			series = append(series, chart.ContinuousSeries{XValues: ux, YValues: uy, Style: bandStyle(colorOpt)})
			if _, uhi, ok := finiteRange(uy); ok && uhi > hi {
				hi = uhi
			}
		}
		if lx, ly := finitePoints(xs, lower); len(lx) > 1 {
			series = append(series, chart.ContinuousSeries{XValues: lx, YValues: ly, Style: bandStyle(colorOpt)})
		}
	}
	series = append(series, chart.ContinuousSeries{
		Name: "Optimal Spec", XValues: ox, YValues: oy, Style: lineStyle(colorOpt),
	})
	if hi <= floor {
		hi = floor * 10
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("1D Spectrum - Integration %d", ds.IntStart+n),
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chartPadding(),
		XAxis:      chart.XAxis{Name: "Detector Pixel Position"},
		YAxis: chart.YAxis{
			Name:  "Flux",
			Range: &chart.LogarithmicRange{Min: floor, Max: hi * 1.1},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	img, err := chartImage(ch)
	if err != nil {
		return "", fmt.Errorf("fig3302: %w", err)
	}
	return r.saveFigure(img, TagSpectrum, "Spectrum", pauseLong,
		FileIndex(fileIndex, r.fileCount()), IntIndex(n, r.intCount(len(ds.OptSpec))))
}

// ColumnView plots one detector column of one integration: the retained
// samples, the expected column profile, and the worst outlier (fig 3501).
func (r *Renderer) ColumnView(col, n, fileIndex int, subdata [][]float64, submask [][]bool, expected [][]float64, worstRow int) (string, error) {
	ny := len(subdata)
	if ny == 0 || col < 0 || col >= len(subdata[0]) {
		return "", fmt.Errorf("fig3501: column %d out of range", col)
	}
	nx := len(subdata[0])

	var gx, gy, ex, ey []float64
	for y := 0; y < ny; y++ {
		if submask != nil && !submask[y][col] {
			continue
		}
		gx = append(gx, float64(y))
		gy = append(gy, subdata[y][col])
		if expected != nil {
			ex = append(ex, float64(y))
			ey = append(ey, expected[y][col])
		}
	}
	gx, gy = finitePoints(gx, gy)
	if len(gx) == 0 {
		return "", fmt.Errorf("fig3501: column %d has no retained samples", col)
	}
	gx, gy = ensureSpan(gx, gy)
	series := []chart.Series{
		chart.ContinuousSeries{XValues: gx, YValues: gy, Style: pointStyle(colorData)},
	}
	ex, ey = finitePoints(ex, ey)
	if len(ex) > 0 {
		ex, ey = ensureSpan(ex, ey)
		series = append(series, chart.ContinuousSeries{XValues: ex, YValues: ey, Style: lineStyle(colorExpected)})
	}
	if worstRow >= 0 && worstRow < ny && isFinite(subdata[worstRow][col]) {
		st := pointStyle(colorOutlier)
		st.DotWidth = 6
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{float64(worstRow)},
			YValues: []float64{subdata[worstRow][col]},
			Style:   st,
		})
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("Integration %d, Columns %d/%d", n, col, nx),
		Width:      chartHeight,
		Height:     chartHeight,
		Background: chartPadding(),
		Series:     series,
	}
	img, err := chartImage(ch)
	if err != nil {
		return "", fmt.Errorf("fig3501: %w", err)
	}
	return r.saveFigure(img, TagColumnView, "subdata", pauseShort,
		FileIndex(fileIndex, r.fileCount()),
		IntIndex(n, r.intCount(n+1)),
		ColIndex(col, nx))
}

// xCoords returns the detector x coordinate per column, falling back to
// 0..nx-1 when the dataset carries none.
func xCoords(ds *dataset.Dataset) []float64 {
	n := ds.NX()
	xs := make([]float64, n)
	for i := range xs {
		if i < len(ds.X) {
			xs[i] = float64(ds.X[i])
		} else {
			xs[i] = float64(i)
		}
	}
	return xs
}
