package segmenter

import (
	"fmt"
	"image"
	"math"
)

// PixelBuffer is a square, row-major canvas of 8-bit intensity samples.
// Every pipeline stage returns a fresh buffer; none is modified after it has
// been handed to the next stage.
type PixelBuffer struct {
	side int
	pix  []uint8
}

func newPixelBuffer(side int) *PixelBuffer {
	return &PixelBuffer{side: side, pix: make([]uint8, side*side)}
}

// NewPixelBuffer copies pix into a new buffer of the given side.
func NewPixelBuffer(side int, pix []uint8) (*PixelBuffer, error) {
	if side <= 0 {
		return nil, fmt.Errorf("pixel buffer side must be > 0 (got %d)", side)
	}
	if len(pix) != side*side {
		return nil, fmt.Errorf("pixel buffer length %d does not match side %d", len(pix), side)
	}
	buf := newPixelBuffer(side)
	copy(buf.pix, pix)
	return buf, nil
}

// Side returns the canvas width (and height).
func (b *PixelBuffer) Side() int {
	return b.side
}

// Len returns the number of samples, always Side()*Side().
func (b *PixelBuffer) Len() int {
	return len(b.pix)
}

// At returns the sample at column x, row y.
func (b *PixelBuffer) At(x, y int) uint8 {
	return b.pix[y*b.side+x]
}

// Pix returns a copy of the samples.
func (b *PixelBuffer) Pix() []uint8 {
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out
}

// Gray renders the buffer as an image, for debugging dumps and overlays.
func (b *PixelBuffer) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.side, b.side))
	copy(img.Pix, b.pix)
	return img
}

// clampByte rounds v to the nearest integer and clamps it to [0,255].
func clampByte(v float64) uint8 {
	r := math.Round(v)
	switch {
	case r <= 0:
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}
