// Package overlay draws segmentation results on top of the source image.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"go-iris-segmenter/pkg/models"
)

// Style sets the ring colours.
type Style struct {
	Pupil color.Color
	Iris  color.Color
}

// DefaultStyle draws the pupil in green and the iris in red.
func DefaultStyle() Style {
	return Style{
		Pupil: color.RGBA{G: 255, A: 255},
		Iris:  color.RGBA{R: 255, A: 255},
	}
}

// Draw copies src and outlines both boundaries with three concentric rings
// (r-1, r, r+1) so they stay visible on large images.
func Draw(src image.Image, data models.IrisData, style Style) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	drawRing(dst, data.PupilCenterX, data.PupilCenterY, data.PupilRadius, style.Pupil)
	drawRing(dst, data.IrisCenterX, data.IrisCenterY, data.IrisRadius, style.Iris)
	return dst
}

func drawRing(img draw.Image, cx, cy, r int, c color.Color) {
	for _, rr := range []int{r - 1, r, r + 1} {
		DrawCircle(img, cx, cy, rr, c)
	}
}

// DrawCircle rasterises a circle outline with the midpoint algorithm.
// Points outside img are dropped; a negative radius draws nothing.
func DrawCircle(img draw.Image, cx, cy, r int, c color.Color) {
	if r < 0 {
		return
	}
	bounds := img.Bounds()
	set := func(x, y int) {
		if image.Pt(x, y).In(bounds) {
			img.Set(x, y, c)
		}
	}

	x, y := 0, r
	d := 3 - 2*r
	for y >= x {
		set(cx+x, cy+y)
		set(cx+y, cy+x)
		set(cx-y, cy+x)
		set(cx-x, cy+y)
		set(cx-x, cy-y)
		set(cx-y, cy-x)
		set(cx+y, cy-x)
		set(cx+x, cy-y)

		if d < 0 {
			d += 4*x + 6
		} else {
			d += 4*(x-y) + 10
			y--
		}
		x++
	}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
