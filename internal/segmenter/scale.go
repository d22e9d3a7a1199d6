package segmenter

import (
	"math"

	"go-iris-segmenter/pkg/models"
)

// ScaleResult maps pupil and iris circles found on a resolution x resolution
// canvas back to the original image, whose larger side is
// originalResolution. Every field is scaled and rounded to the nearest
// integer.
func ScaleResult(pupil, iris Circle, resolution, originalResolution int) models.IrisData {
	scale := float64(originalResolution) / float64(resolution)
	s := func(v int) int {
		return int(math.Round(float64(v) * scale))
	}

	return models.IrisData{
		PupilCenterX: s(pupil.X),
		PupilCenterY: s(pupil.Y),
		PupilRadius:  s(pupil.R),
		IrisCenterX:  s(iris.X),
		IrisCenterY:  s(iris.Y),
		IrisRadius:   s(iris.R),
	}
}
