package plots

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// stackVertical composes panels top to bottom, left aligned, on a white
// background.
func stackVertical(panels ...image.Image) image.Image {
	w, h := 0, 0
	for _, p := range panels {
		b := p.Bounds()
		if b.Dx() > w {
			w = b.Dx()
		}
		h += b.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	y := 0
	for _, p := range panels {
		b := p.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), p, b.Min, draw.Src)
		y += b.Dy()
	}
	return out
}

// joinHorizontal composes panels left to right, top aligned, on a white
// background.
func joinHorizontal(panels ...image.Image) image.Image {
	w, h := 0, 0
	for _, p := range panels {
		b := p.Bounds()
		w += b.Dx()
		if b.Dy() > h {
			h = b.Dy()
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	x := 0
	for _, p := range panels {
		b := p.Bounds()
		draw.Draw(out, image.Rect(x, 0, x+b.Dx(), b.Dy()), p, b.Min, draw.Src)
		x += b.Dx()
	}
	return out
}

// stampTitle draws a centered title strip above the image, used where a
// figure carries a heading over multiple panels.
func stampTitle(img image.Image, text string) image.Image {
	if strings.TrimSpace(text) == "" {
		return img
	}
	const strip = 22
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+strip))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, strip, b.Dx(), strip+b.Dy()), img, b.Min, draw.Src)

	dr := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	tw := dr.MeasureString(text).Ceil()
	x := (b.Dx() - tw) / 2
	if x < 4 {
		x = 4
	}
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(15)}
	dr.DrawString(text)
	return out
}
