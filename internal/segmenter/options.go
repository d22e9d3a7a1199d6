package segmenter

import (
	"fmt"

	apperrors "go-iris-segmenter/internal/errors"
)

// MinResolution is the smallest canvas on which both radius bands and the
// centre search window are non-degenerate.
const MinResolution = 16

// Options configures one segmentation run. Radius bounds are derived from
// the normalized canvas side: minRadius = side/MinDivisor, maxRadius =
// side/MaxDivisor.
type Options struct {
	// Resolution is the side of the normalized square canvas.
	Resolution int

	PupilMinDivisor int
	PupilMaxDivisor int
	IrisMinDivisor  int
	IrisMaxDivisor  int

	// SkipDiagnostics leaves PerimeterStats empty in the result.
	SkipDiagnostics bool
}

// DefaultOptions returns the standard 256px canvas with pupil radii in
// [side/10, side/6] and iris radii in [side/10, side/4].
func DefaultOptions() Options {
	return Options{
		Resolution:      DefaultResolution,
		PupilMinDivisor: 10,
		PupilMaxDivisor: 6,
		IrisMinDivisor:  10,
		IrisMaxDivisor:  4,
	}
}

// FastOptions trades localisation precision for speed with a 128px canvas.
func FastOptions() Options {
	return DefaultOptions().WithResolution(128).WithoutDiagnostics()
}

// WithResolution returns options using a different canvas side
func (opts Options) WithResolution(resolution int) Options {
	opts.Resolution = resolution
	return opts
}

// WithPupilBand sets the pupil radius divisors
func (opts Options) WithPupilBand(minDivisor, maxDivisor int) Options {
	opts.PupilMinDivisor = minDivisor
	opts.PupilMaxDivisor = maxDivisor
	return opts
}

// WithIrisBand sets the iris radius divisors
func (opts Options) WithIrisBand(minDivisor, maxDivisor int) Options {
	opts.IrisMinDivisor = minDivisor
	opts.IrisMaxDivisor = maxDivisor
	return opts
}

// WithoutDiagnostics disables perimeter statistics
func (opts Options) WithoutDiagnostics() Options {
	opts.SkipDiagnostics = true
	return opts
}

// PupilRadii returns the inclusive pupil radius range for a canvas side.
func (opts Options) PupilRadii(side int) (int, int) {
	return side / opts.PupilMinDivisor, side / opts.PupilMaxDivisor
}

// IrisRadii returns the inclusive iris radius range for a canvas side.
func (opts Options) IrisRadii(side int) (int, int) {
	return side / opts.IrisMinDivisor, side / opts.IrisMaxDivisor
}

// Validate reports options that would produce a degenerate search.
func (opts Options) Validate() error {
	if opts.Resolution < MinResolution {
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("resolution %d is below the minimum of %d", opts.Resolution, MinResolution), nil)
	}
	if opts.PupilMinDivisor <= 0 || opts.PupilMaxDivisor <= 0 || opts.IrisMinDivisor <= 0 || opts.IrisMaxDivisor <= 0 {
		return apperrors.NewValidationError("radius divisors must be positive", nil)
	}

	pMin, pMax := opts.PupilRadii(opts.Resolution)
	iMin, iMax := opts.IrisRadii(opts.Resolution)
	if pMin < 1 || pMin > pMax {
		return apperrors.NewValidationError(fmt.Sprintf("empty pupil radius range [%d,%d]", pMin, pMax), nil)
	}
	if iMin < 1 || iMin > iMax {
		return apperrors.NewValidationError(fmt.Sprintf("empty iris radius range [%d,%d]", iMin, iMax), nil)
	}
	return nil
}
