package segmenter

import (
	"image"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "go-iris-segmenter/internal/errors"
	"go-iris-segmenter/internal/logger"
	"go-iris-segmenter/pkg/models"
)

// Result is the full outcome of one segmentation run.
type Result struct {
	// Iris holds both boundaries in original image coordinates.
	Iris models.IrisData

	// Pupil and IrisBoundary are the winning circles on the canvas.
	Pupil        Boundary
	IrisBoundary Boundary

	PupilStats PerimeterStats
	IrisStats  PerimeterStats

	Resolution         int
	OriginalResolution int
	Width, Height      int

	Timestamp      time.Time
	ProcessingTime time.Duration
}

// coreSegmenter runs normalize -> grayscale -> blur -> two boundary
// searches -> rescale. It holds no mutable state and is safe for concurrent
// use.
type coreSegmenter struct {
	defaults Options
}

// NewSegmenter creates a segmenter whose Segment method uses opts.
func NewSegmenter(opts Options) (Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &coreSegmenter{defaults: opts}, nil
}

// Options returns the defaults used by Segment.
func (s *coreSegmenter) Options() Options {
	return s.defaults
}

// Segment runs the pipeline with the default options
func (s *coreSegmenter) Segment(img image.Image) (models.IrisData, error) {
	result, err := s.SegmentWithOptions(img, s.defaults)
	if err != nil {
		return models.IrisData{}, err
	}
	return result.Iris, nil
}

// SegmentWithOptions runs the pipeline with the given options.
func (s *coreSegmenter) SegmentWithOptions(img image.Image, options Options) (*Result, error) {
	start := time.Now()

	if err := options.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperrors.NewInvalidInputError("nil image", nil)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewInvalidInputError("zero-sized image", nil)
	}

	canvas, err := Normalize(img, options.Resolution)
	if err != nil {
		return nil, err
	}
	gray, err := Grayscale(canvas)
	if err != nil {
		return nil, err
	}
	blurred := GaussianBlur(gray)

	side := blurred.Side()
	pupilMin, pupilMax := options.PupilRadii(side)
	irisMin, irisMax := options.IrisRadii(side)

	// The two searches are independent; the iris is not constrained by the
	// pupil result.
	pupil := Locate(blurred, pupilMin, pupilMax)
	iris := Locate(blurred, irisMin, irisMax)

	original := max(width, height)
	result := &Result{
		Iris:               ScaleResult(pupil.Circle, iris.Circle, options.Resolution, original),
		Pupil:              pupil,
		IrisBoundary:       iris,
		Resolution:         options.Resolution,
		OriginalResolution: original,
		Width:              width,
		Height:             height,
		Timestamp:          start,
	}

	if !options.SkipDiagnostics {
		result.PupilStats = MeasurePerimeter(blurred, pupil.Circle)
		result.IrisStats = MeasurePerimeter(blurred, iris.Circle)
	}

	result.ProcessingTime = time.Since(start)

	logger.WithFields(logrus.Fields{
		"width":       width,
		"height":      height,
		"resolution":  options.Resolution,
		"pupil":       pupil.Circle.String(),
		"pupil_score": pupil.Score,
		"iris":        iris.Circle.String(),
		"iris_score":  iris.Score,
		"elapsed_ms":  result.ProcessingTime.Milliseconds(),
	}).Debug("Segmentation finished")

	return result, nil
}
