package segmenter

const kernelRadius = 2

// gaussianKernel is a normalized 5x5 Gaussian, row-major.
var gaussianKernel = [25]float64{
	0.003, 0.013, 0.022, 0.013, 0.003,
	0.013, 0.059, 0.097, 0.059, 0.013,
	0.022, 0.097, 0.159, 0.097, 0.022,
	0.013, 0.059, 0.097, 0.059, 0.013,
	0.003, 0.013, 0.022, 0.013, 0.003,
}

// GaussianBlur convolves src with the 5x5 kernel. Samples within
// kernelRadius of any edge are copied from src unchanged.
func GaussianBlur(src *PixelBuffer) *PixelBuffer {
	side := src.side
	dst := &PixelBuffer{side: side, pix: make([]uint8, len(src.pix))}
	copy(dst.pix, src.pix)

	for y := kernelRadius; y < side-kernelRadius; y++ {
		for x := kernelRadius; x < side-kernelRadius; x++ {
			var sum float64
			for ky := -kernelRadius; ky <= kernelRadius; ky++ {
				row := (y + ky) * side
				krow := (ky + kernelRadius) * 5
				for kx := -kernelRadius; kx <= kernelRadius; kx++ {
					sum += float64(src.pix[row+x+kx]) * gaussianKernel[krow+kx+kernelRadius]
				}
			}
			dst.pix[y*side+x] = clampByte(sum)
		}
	}
	return dst
}
