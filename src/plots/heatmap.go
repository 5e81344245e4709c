package plots

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var nan = math.NaN()

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Invalid pixels render in a fixed sentinel color on every heatmap so bad
// data is visually unmistakable.
var sentinelColor = color.Black

// frameGrid adapts one detector frame to the heatmap grid interface, mapping
// row and column indices onto absolute detector coordinates.
type frameGrid struct {
	frame  [][]float64
	x0, y0 float64
}

func (g frameGrid) Dims() (c, r int) {
	r = len(g.frame)
	if r > 0 {
		c = len(g.frame[0])
	}
	return c, r
}

func (g frameGrid) Z(c, r int) float64 { return g.frame[r][c] }
func (g frameGrid) X(c int) float64    { return g.x0 + float64(c) }
func (g frameGrid) Y(r int) float64    { return g.y0 + float64(r) }

// specGrid adapts a stack of 1D spectra, one row per integration. By default
// wavelength runs along x and integration number along y; timeOnX transposes
// that.
type specGrid struct {
	spec    [][]float64
	wave    []float64
	timeOnX bool
}

func (g specGrid) Dims() (c, r int) {
	if g.timeOnX {
		return len(g.spec), len(g.wave)
	}
	return len(g.wave), len(g.spec)
}

func (g specGrid) Z(c, r int) float64 {
	if g.timeOnX {
		return g.spec[c][r]
	}
	return g.spec[r][c]
}

func (g specGrid) X(c int) float64 {
	if g.timeOnX {
		return float64(c)
	}
	return g.wave[c]
}

func (g specGrid) Y(r int) float64 {
	if g.timeOnX {
		return g.wave[r]
	}
	return float64(r)
}

// refLine is a horizontal guide drawn across a heatmap, marking aperture or
// background region bounds.
type refLine struct {
	y      float64
	col    color.Color
	dashed bool
	label  string
}

// heatmapPanel renders one image panel with a fixed color scale.
type heatmapPanel struct {
	title  string
	xlabel string
	ylabel string
	grid   plotter.GridXYZ
	colors palette.ColorMap
	vmin   float64
	vmax   float64
	lines  []refLine
}

func (pn heatmapPanel) image(w, h vg.Length) (image.Image, error) {
	p := plot.New()
	p.Title.Text = pn.title
	p.X.Label.Text = pn.xlabel
	p.Y.Label.Text = pn.ylabel

	vmin, vmax := pn.vmin, pn.vmax
	if !(vmax > vmin) {
		if !isFinite(vmin) {
			vmin = 0
		}
		vmax = vmin + 1
	}
	pn.colors.SetMin(vmin)
	pn.colors.SetMax(vmax)
	pal := pn.colors.Palette(255)
	hm := plotter.NewHeatMap(pn.grid, pal)
	hm.Min = vmin
	hm.Max = vmax
	hm.NaN = sentinelColor
	cols := pal.Colors()
	hm.Underflow = cols[0]
	hm.Overflow = cols[len(cols)-1]
	p.Add(hm)

	nc, _ := pn.grid.Dims()
	xmin, xmax := pn.grid.X(0), pn.grid.X(nc-1)
	for _, rl := range pn.lines {
		ln, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: rl.y}, {X: xmax, Y: rl.y}})
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

	c := vgimg.New(w, h)
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// colorbarPanel renders a vertical color scale for the given value range.
func colorbarPanel(cm palette.ColorMap, vmin, vmax float64, label string, w, h vg.Length) image.Image {
	if !(vmax > vmin) {
		if !isFinite(vmin) {
			vmin = 0
		}
		vmax = vmin + 1
	}
	cm.SetMin(vmin)
	cm.SetMax(vmax)

	p := plot.New()
	cb := &plotter.ColorBar{ColorMap: cm}
	cb.Vertical = true
	p.Add(cb)
	p.HideX()
	p.Y.Label.Text = label

	c := vgimg.New(w, h)
	p.Draw(draw.New(c))
	return c.Image()
}

// maskedFrame copies a frame with excluded or non-finite pixels replaced by
// NaN so the heatmap paints them in the sentinel color.
func maskedFrame(frame [][]float64, mask [][]bool) [][]float64 {
	out := make([][]float64, len(frame))
	for y, row := range frame {
		or := make([]float64, len(row))
		for x, v := range row {
			if (mask != nil && !mask[y][x]) || !isFinite(v) {
				or[x] = nan
				continue
			}
			or[x] = v
		}
		out[y] = or
	}
	return out
}
