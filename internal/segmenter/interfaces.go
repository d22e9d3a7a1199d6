package segmenter

import (
	"image"

	"go-iris-segmenter/pkg/models"
)

// Segmenter locates the pupil and iris boundaries of a cropped eye image.
type Segmenter interface {
	// Segment runs the pipeline with the segmenter's default options.
	Segment(img image.Image) (models.IrisData, error)

	// SegmentWithOptions runs the pipeline with explicit options and returns
	// the canvas-space boundaries alongside the scaled result.
	SegmentWithOptions(img image.Image, options Options) (*Result, error)

	// Options returns the defaults used by Segment.
	Options() Options
}
