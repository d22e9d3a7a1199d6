package segmenter

import (
	"gonum.org/v1/gonum/stat"
)

// PerimeterStats summarises the gradient samples that contribute to a
// circle's coherence score.
type PerimeterStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Valid  int     `json:"valid"`
}

// Coverage is the fraction of the angular samples that were valid.
func (s PerimeterStats) Coverage() float64 {
	return float64(s.Valid) / AngularSamples
}

// MeasurePerimeter collects the valid gradient samples of c. It is a
// diagnostic only; Locate never uses it to rank candidates.
func MeasurePerimeter(buf *PixelBuffer, c Circle) PerimeterStats {
	samples := make([]float64, 0, AngularSamples)
	forEachSample(buf, c.X, c.Y, c.R, func(g float64) {
		samples = append(samples, g)
	})

	switch len(samples) {
	case 0:
		return PerimeterStats{}
	case 1:
		return PerimeterStats{Mean: samples[0], Valid: 1}
	}

	mean, std := stat.MeanStdDev(samples, nil)
	return PerimeterStats{Mean: mean, StdDev: std, Valid: len(samples)}
}
