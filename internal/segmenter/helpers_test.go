package segmenter

import (
	"image"
	"image/color"
)

// createTestImage creates a uniformly filled RGBA image
func createTestImage(width, height int, fillColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

// createEyeImage draws concentric pupil and iris disks on a bright
// background. A zero irisRadius draws the pupil only.
func createEyeImage(size, cx, cy, pupilRadius, irisRadius int, pupil, iris, sclera uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy
			v := sclera
			switch {
			case d2 <= pupilRadius*pupilRadius:
				v = pupil
			case d2 <= irisRadius*irisRadius:
				v = iris
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// bufferFromGray copies a square gray image into a PixelBuffer.
func bufferFromGray(img *image.Gray) *PixelBuffer {
	side := img.Bounds().Dx()
	buf := newPixelBuffer(side)
	for y := 0; y < side; y++ {
		copy(buf.pix[y*side:(y+1)*side], img.Pix[y*img.Stride:y*img.Stride+side])
	}
	return buf
}

// uniformBuffer returns a buffer with every sample set to v.
func uniformBuffer(side int, v uint8) *PixelBuffer {
	buf := newPixelBuffer(side)
	for i := range buf.pix {
		buf.pix[i] = v
	}
	return buf
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
