package segmenter

import "math"

// Gradient returns the Sobel gradient magnitude at (x, y). The point must
// have at least one pixel of margin on every side.
func Gradient(buf *PixelBuffer, x, y int) float64 {
	w := buf.side
	up := (y - 1) * w
	mid := y * w
	down := (y + 1) * w

	p00 := int(buf.pix[up+x-1])
	p01 := int(buf.pix[up+x])
	p02 := int(buf.pix[up+x+1])
	p10 := int(buf.pix[mid+x-1])
	p12 := int(buf.pix[mid+x+1])
	p20 := int(buf.pix[down+x-1])
	p21 := int(buf.pix[down+x])
	p22 := int(buf.pix[down+x+1])

	gx := -p00 + p02 - 2*p10 + 2*p12 - p20 + p22
	gy := -p00 - 2*p01 - p02 + p20 + 2*p21 + p22

	return math.Sqrt(float64(gx*gx + gy*gy))
}
