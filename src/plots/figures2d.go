package plots

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/iafilius/SpectroQuicklook/src/dataset"
	"github.com/iafilius/SpectroQuicklook/src/stats"
)

var (
	boundOrange   = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	boundSeagreen = color.RGBA{R: 0x3c, G: 0xb3, B: 0x71, A: 0xff}
)

// LightCurve2D renders the normalized spectra stack as a 2D light curve
// colored around unity, with the scatter of the run in the title (fig 3101).
func (r *Renderer) LightCurve2D(ds *dataset.Dataset) (string, error) {
	if len(ds.OptSpec) == 0 || len(ds.Wave1D) == 0 {
		return "", fmt.Errorf("fig3101: dataset has no optimal spectra or wavelength solution")
	}
	norm := stats.NormalizeSpectrum(ds.OptSpec, ds.OptMask)
	vmin, vmax, _ := r.Meta.ColorScale()
	timeOnX := r.Meta.TimeAxis == "x"
	xlabel, ylabel := "Wavelength (µm)", "Integration Number"
	if timeOnX {
		xlabel, ylabel = ylabel, xlabel
	}
	panel := heatmapPanel{
		title:  fmt.Sprintf("MAD = %.0f ppm", r.Meta.MADppm),
		xlabel: xlabel,
		ylabel: ylabel,
		grid:   specGrid{spec: norm, wave: ds.Wave1D, timeOnX: timeOnX},
		colors: moreland.SmoothBlueRed(),
		vmin:   vmin,
		vmax:   vmax,
	}
	main, err := panel.image(6*vg.Inch, 6*vg.Inch)
	if err != nil {
		return "", fmt.Errorf("fig3101: %w", err)
	}
	cb := colorbarPanel(moreland.SmoothBlueRed(), vmin, vmax, "Normalized Flux", 1.2*vg.Inch, 6*vg.Inch)
	return r.saveFigure(joinHorizontal(main, cb), TagLightCurve2D, "2D_LC", pauseLong)
}

// ImageAndBackground renders, per integration in the configured window, the
// background-subtracted frame stacked over the subtracted background itself
// (fig 3301). Returns one path per integration. The background color scale
// spans the median of the whole background cube plus or minus three of its
// standard deviations.
func (r *Renderer) ImageAndBackground(ds *dataset.Dataset, fileIndex int) ([]string, error) {
	if len(ds.Flux) == 0 || len(ds.BG) == 0 {
		return nil, fmt.Errorf("fig3301: dataset needs both the flux and background cubes")
	}
	bgVals, bgMask := stats.Flatten3(ds.BG, ds.Mask)
	bgMed := stats.MaskedMedian(bgVals, bgMask)
	bgStd := stats.MaskedStd(bgVals, bgMask)
	bgMin, bgMax := bgMed-3*bgStd, bgMed+3*bgStd

	x0, y0 := originOf(ds)
	ints := r.intCount(ds.NInt())
	var paths []string
	for n := 0; n < r.frameCount(ds); n++ {
		mask := maskAt(ds, n)
		framePanel := heatmapPanel{
			title:  "Background-Subtracted Frame",
			ylabel: "Detector Pixel Position",
			grid:   frameGrid{frame: ds.GoodFrame(n), x0: x0, y0: y0},
			colors: moreland.ExtendedBlackBody(),
			vmin:   -200,
			vmax:   1000,
		}
		bgPanel := heatmapPanel{
			title:  "Subtracted Background",
			xlabel: "Detector Pixel Position",
			ylabel: "Detector Pixel Position",
			grid:   frameGrid{frame: maskedFrame(ds.BG[n], mask), x0: x0, y0: y0},
			colors: moreland.ExtendedBlackBody(),
			vmin:   bgMin,
			vmax:   bgMax,
		}
		frameImg, err := framePanel.image(6*vg.Inch, 2.6*vg.Inch)
		if err != nil {
			return paths, fmt.Errorf("fig3301: %w", err)
		}
		bgImg, err := bgPanel.image(6*vg.Inch, 2.6*vg.Inch)
		if err != nil {
			return paths, fmt.Errorf("fig3301: %w", err)
		}
		rows := stackVertical(
			joinHorizontal(frameImg, colorbarPanel(moreland.ExtendedBlackBody(), -200, 1000, "", vg.Inch, 2.6*vg.Inch)),
			joinHorizontal(bgImg, colorbarPanel(moreland.ExtendedBlackBody(), bgMin, bgMax, "", vg.Inch, 2.6*vg.Inch)),
		)
		img := stampTitle(rows, fmt.Sprintf("Integration %d", ds.IntStart+n))
		p, err := r.saveFigure(img, TagImageAndBackground, "ImageAndBackground", pauseLong,
			FileIndex(fileIndex, r.fileCount()), IntIndex(n, ints))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Profile renders the weighting profile of one integration with excluded
// pixels zeroed, scaled to the bottom 5% of the profile range so the wings
// stay visible (fig 3303).
func (r *Renderer) Profile(profile [][]float64, submask [][]bool, n, fileIndex int) (string, error) {
	if len(profile) == 0 {
		return "", fmt.Errorf("fig3303: empty profile")
	}
	ny, nx := len(profile), len(profile[0])
	product := make([][]float64, ny)
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	any := false
	for y := 0; y < ny; y++ {
		row := make([]float64, nx)
		for x := 0; x < nx; x++ {
			v := profile[y][x]
			if !isFinite(v) {
				row[x] = nan
				continue
			}
			if submask != nil && !submask[y][x] {
				v = 0
			}
			row[x] = v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			any = true
		}
		product[y] = row
	}
	if !any {
		return "", fmt.Errorf("fig3303: profile has no finite values")
	}

	panel := heatmapPanel{
		title:  fmt.Sprintf("Profile - Integration %d", n),
		xlabel: "Relative Pixel Position",
		ylabel: "Relative Pixel Position",
		grid:   frameGrid{frame: product},
		colors: moreland.Kindlmann(),
		vmin:   lo,
		vmax:   lo + 0.05*hi,
	}
	img, err := panel.image(6*vg.Inch, 3*vg.Inch)
	if err != nil {
		return "", fmt.Errorf("fig3303: %w", err)
	}
	return r.saveFigure(img, TagProfile, "Profile", pauseShort,
		FileIndex(fileIndex, r.fileCount()), IntIndex(n, r.intCount(n+1)))
}

// ResidualBackground shows the time-median frame next to its row-collapsed
// flux slice, with the aperture and background bounds overlaid on both
// panels (fig 3304). The slice is the per-row median over the ten central
// columns, resampled through a cubic spline at 0.01-row steps.
func (r *Renderer) ResidualBackground(ds *dataset.Dataset, fileIndex int, vmin, vmax float64) (string, error) {
	if len(ds.Flux) == 0 {
		return "", fmt.Errorf("fig3304: dataset has no flux cube")
	}
	if !(vmax > vmin) {
		vmin, vmax = -200, 1000
	}
	med := stats.TimeMedianFrame(ds.Flux, ds.Mask)
	subnx := r.Meta.SubNX
	if subnx <= 0 {
		subnx = ds.NX()
	}
	slice := stats.RowBandMedians(med, subnx/2-5, subnx/2+5)
	ymin, ymax := ds.YRange()

	var xs, ys []float64
	for i, v := range slice {
		if !isFinite(v) {
			continue
		}
		xs = append(xs, float64(ymin+i))
		ys = append(ys, v)
	}
	if len(xs) < 4 {
		return "", fmt.Errorf("fig3304: only %d finite rows in the central slice", len(xs))
	}
	var spline interp.NotAKnotCubic
	if err := spline.Fit(xs, ys); err != nil {
		return "", fmt.Errorf("fig3304: interpolate slice: %w", err)
	}
	var hrFlux, hrY []float64
	for y := xs[0]; y < xs[len(xs)-1]; y += 0.01 {
		hrY = append(hrY, y)
		hrFlux = append(hrFlux, spline.Predict(y))
	}

	yBase := float64(ymin)
	bounds := []refLine{
		{y: yBase + float64(r.Meta.BGY1), col: boundOrange},
		{y: yBase + float64(r.Meta.BGY2), col: boundOrange},
		{y: yBase + r.Meta.SrcYPos - float64(r.Meta.SpecHW), col: boundSeagreen, dashed: true},
		{y: yBase + r.Meta.SrcYPos + float64(r.Meta.SpecHW), col: boundSeagreen, dashed: true},
	}
	x0, y0 := originOf(ds)
	left := heatmapPanel{
		xlabel: "Detector Pixel Position",
		ylabel: "Detector Pixel Position",
		grid:   frameGrid{frame: med, x0: x0, y0: y0},
		colors: moreland.ExtendedBlackBody(),
		vmin:   vmin,
		vmax:   vmax,
		lines:  bounds,
	}
	leftImg, err := left.image(5.4*vg.Inch, 3.2*vg.Inch)
	if err != nil {
		return "", fmt.Errorf("fig3304: %w", err)
	}

	labeled := make([]refLine, len(bounds))
	copy(labeled, bounds)
	labeled[0].label = fmt.Sprintf("bg%d", r.Meta.BGHW)
	labeled[2].label = fmt.Sprintf("ap%d", r.Meta.SpecHW)
	rightImg, err := residualSlicePanel(hrFlux, hrY, vmin, vmax, float64(ymin), float64(ymax), labeled)
	if err != nil {
		return "", fmt.Errorf("fig3304: %w", err)
	}
	cb := colorbarPanel(moreland.ExtendedBlackBody(), vmin, vmax, "", vg.Inch, 3.2*vg.Inch)

	img := joinHorizontal(leftImg, rightImg, cb)
	return r.saveFigure(img, TagResidualBackground, "ResidualBG", pauseShort,
		FileIndex(fileIndex, r.fileCount()))
}

// residualSlicePanel draws the collapsed flux slice as a scatter against
// row position, colored by value on the frame's color scale.
func residualSlicePanel(flux, ys []float64, vmin, vmax, ymin, ymax float64, bounds []refLine) (image.Image, error) {
	p := plot.New()
	p.X.Label.Text = "Flux [e-]"
	p.X.Min, p.X.Max = vmin, vmax
	p.Y.Min, p.Y.Max = ymin, ymax

	pts := make(plotter.XYs, len(flux))
	for i := range pts {
		pts[i].X = flux[i]
		pts[i].Y = ys[i]
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(vmin)
	cm.SetMax(vmax)
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		v := flux[i]
		if v < vmin {
			v = vmin
		}
		if v > vmax {
			v = vmax
		}
		c, cerr := cm.At(v)
		if cerr != nil {
			c = sentinelColor
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)

	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: ymin}, {X: 0, Y: ymax}})
	if err != nil {
		return nil, err
	}
	zero.Color = color.Gray{Y: 0x80}
	zero.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
	p.Add(zero)

	for _, rl := range bounds {
		ln, err := plotter.NewLine(plotter.XYs{{X: vmin, Y: rl.y}, {X: vmax, Y: rl.y}})
		if err != nil {
			return nil, err
		}
		ln.Color = rl.col
		ln.Width = vg.Points(1.5)
		if rl.dashed {
			ln.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(ln)
		if rl.label != "" {
			p.Legend.Add(rl.label, ln)
		}
	}
	p.Legend.Top = true

	c := vgimg.New(1.8*vg.Inch, 3.2*vg.Inch)
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// MedianFrame renders the cleaned time-median frame (fig 3401). The color
// scale spans 2000 flux units up from the frame minimum.
func (r *Renderer) MedianFrame(ds *dataset.Dataset) (string, error) {
	if len(ds.MedFlux) == 0 {
		return "", fmt.Errorf("fig3401: dataset has no median frame")
	}
	lo := math.MaxFloat64
	ok := false
	for _, row := range ds.MedFlux {
		for _, v := range row {
			if isFinite(v) && v < lo {
				lo = v
				ok = true
			}
		}
	}
	if !ok {
		return "", fmt.Errorf("fig3401: median frame has no finite values")
	}
	x0, y0 := originOf(ds)
	panel := heatmapPanel{
		title:  "Cleaned Median Frame",
		xlabel: "Detector Pixel Position",
		ylabel: "Detector Pixel Position",
		grid:   frameGrid{frame: ds.MedFlux, x0: x0, y0: y0},
		colors: moreland.Kindlmann(),
		vmin:   lo,
		vmax:   lo + 2000,
	}
	img, err := panel.image(6*vg.Inch, 3*vg.Inch)
	if err != nil {
		return "", fmt.Errorf("fig3401: %w", err)
	}
	cb := colorbarPanel(moreland.Kindlmann(), lo, lo+2000, "", vg.Inch, 3*vg.Inch)
	return r.saveFigure(joinHorizontal(img, cb), TagMedianFrame, "MedianFrame", pauseShort)
}

// originOf returns the absolute detector coordinates of the subarray's
// lower-left pixel.
func originOf(ds *dataset.Dataset) (x0, y0 float64) {
	if len(ds.X) > 0 {
		x0 = float64(ds.X[0])
	}
	if len(ds.Y) > 0 {
		y0 = float64(ds.Y[0])
	}
	return x0, y0
}

func maskAt(ds *dataset.Dataset, n int) [][]bool {
	if n < len(ds.Mask) {
		return ds.Mask[n]
	}
	return nil
}
