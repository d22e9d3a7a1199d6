package segmenter

import (
	"image"
	"image/color"

	apperrors "go-iris-segmenter/internal/errors"
)

// Luminance weights (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale maps a square colour canvas to luminance bytes using
// round(0.299R + 0.587G + 0.114B). Alpha is ignored, so transparent padding
// contributes its stored colour (black for a fresh canvas).
func Grayscale(canvas image.Image) (*PixelBuffer, error) {
	if canvas == nil {
		return nil, apperrors.NewInvalidInputError("nil canvas", nil)
	}
	bounds := canvas.Bounds()
	side := bounds.Dx()
	if side <= 0 || bounds.Dy() != side {
		return nil, apperrors.NewInvalidInputError("canvas must be a non-empty square", nil)
	}

	buf := newPixelBuffer(side)

	if nrgba, ok := canvas.(*image.NRGBA); ok {
		for y := 0; y < side; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < side; x++ {
				p := row[x*4 : x*4+3]
				buf.pix[y*side+x] = luma(p[0], p[1], p[2])
			}
		}
		return buf, nil
	}

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			c := color.NRGBAModel.Convert(canvas.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			buf.pix[y*side+x] = luma(c.R, c.G, c.B)
		}
	}
	return buf, nil
}

func luma(r, g, b uint8) uint8 {
	return clampByte(lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b))
}
