package segmenter

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	apperrors "go-iris-segmenter/internal/errors"
)

// DefaultResolution is the side of the normalized canvas.
const DefaultResolution = 256

// Normalize scales img so that its larger dimension equals size, keeping the
// aspect ratio, and centres it on a fully transparent size x size canvas.
func Normalize(img image.Image, size int) (*image.NRGBA, error) {
	if img == nil {
		return nil, apperrors.NewInvalidInputError("nil image", nil)
	}
	if size <= 0 {
		return nil, apperrors.NewInvalidInputError("canvas size must be positive", nil)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewInvalidInputError("zero-sized image", nil)
	}

	scale := float64(size) / float64(max(width, height))
	newWidth := max(1, int(math.Round(float64(width)*scale)))
	newHeight := max(1, int(math.Round(float64(height)*scale)))

	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	offX := (size - newWidth) / 2
	offY := (size - newHeight) / 2
	target := image.Rect(offX, offY, offX+newWidth, offY+newHeight)

	// BiLinear widens its support when shrinking, which gives area-style
	// averaging rather than nearest-neighbour aliasing.
	xdraw.BiLinear.Scale(canvas, target, img, bounds, draw.Src, nil)
	return canvas, nil
}
