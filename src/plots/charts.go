package plots

import (
	"bytes"
	"image"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/palette"
)

// 1D figures render at a fixed raster size; the trend figures are wider
// than tall, the per-column views square-ish.
const (
	chartWidth  = 960
	chartHeight = 480
)

// Series colors for the 1D figures, following the usual cycle of the
// interactive plotting tools these figures started out in.
var (
	colorData     = drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorStd      = drawing.Color{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	colorOpt      = drawing.Color{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	colorOutlier  = drawing.Color{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorExpected = drawing.Color{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

// smallPointStyle is pointStyle with the dot size the dense integer-series
// markers use.
func smallPointStyle(col drawing.Color) chart.Style {
	st := pointStyle(col)
	st.DotWidth = 2
	return st
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

func dashedStyle(col drawing.Color) chart.Style {
	st := lineStyle(col)
	st.StrokeDashArray = []float64{5, 4}
	return st
}

func dottedStyle(col drawing.Color) chart.Style {
	st := lineStyle(col)
	st.StrokeWidth = 1
	st.StrokeDashArray = []float64{2, 3}
	return st
}

// bandStyle draws the translucent ±sigma envelope around a spectrum.
func bandStyle(col drawing.Color) chart.Style {
	col.A = 0x60
	return chart.Style{
		StrokeWidth: 1,
		StrokeColor: col,
	}
}

// verticalMarker is a two-point series drawing a vertical line at x spanning
// lo..hi, the way single positions are marked on a value axis.
func verticalMarker(name string, x, lo, hi float64, style chart.Style) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{x, x},
		YValues: []float64{lo, hi},
		Style:   style,
	}
}

// chartImage renders a chart into a raster image.
func chartImage(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// chartPadding matches the margins the trend charts use.
func chartPadding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}}
}

// finitePoints drops pairs whose y is NaN or infinite; the chart layer maps
// values straight to pixels, so non-finite samples must never reach it.
func finitePoints(xs, ys []float64) ([]float64, []float64) {
	fx := make([]float64, 0, len(ys))
	fy := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		fx = append(fx, xs[i])
		fy = append(fy, y)
	}
	return fx, fy
}

// positivePoints additionally drops pairs whose y is not strictly positive,
// for series drawn on a logarithmic axis.
func positivePoints(xs, ys []float64) ([]float64, []float64) {
	px := make([]float64, 0, len(ys))
	py := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) || y <= 0 {
			continue
		}
		px = append(px, xs[i])
		py = append(py, y)
	}
	return px, py
}

// ensureSpan widens a single-point series so the x range is drawable.
func ensureSpan(xs, ys []float64) ([]float64, []float64) {
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	return xs, ys
}

// indexSeq returns 0..n-1 as x values.
func indexSeq(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// finiteRange scans slices for their finite minimum and maximum.
func finiteRange(vs ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.MaxFloat64, -math.MaxFloat64
	for _, v := range vs {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			if x < lo {
				lo = x
			}
			if x > hi {
				hi = x
			}
			ok = true
		}
	}
	return lo, hi, ok
}

// positiveFloor is the smallest positive finite value across vs, for the
// lower bound of logarithmic axes. Falls back to 1 when nothing qualifies.
func positiveFloor(vs ...[]float64) float64 {
	lo := math.MaxFloat64
	found := false
	for _, v := range vs {
		for _, x := range v {
			if x > 0 && !math.IsInf(x, 0) && x < lo {
				lo = x
				found = true
			}
		}
	}
	if !found {
		return 1
	}
	return lo
}

// paletteColor samples a color map at v in [0,1] for use as a series color.
func paletteColor(cm palette.ColorMap, v float64) drawing.Color {
	cm.SetMin(0)
	cm.SetMax(1)
	c, err := cm.At(v)
	if err != nil {
		return chart.ColorBlack
	}
	cr, cg, cb, ca := c.RGBA()
	return drawing.Color{
		R: uint8(cr >> 8),
		G: uint8(cg >> 8),
		B: uint8(cb >> 8),
		A: uint8(ca >> 8),
	}
}
