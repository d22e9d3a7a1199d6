package validation

import (
	"math"

	"go-iris-segmenter/pkg/models"
)

// QualityThresholds bounds acceptable inputs and plausible segmentations.
type QualityThresholds struct {
	// Input size
	MinWidth       int
	MinHeight      int
	MaxTotalPixels int
	MaxAspectRatio float64

	// Boundary strength on the normalized canvas
	MinBoundaryScore float64
	MinCoverage      float64
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:         16,
		MinHeight:        16,
		MaxTotalPixels:   40_000_000,
		MaxAspectRatio:   3.0,
		MinBoundaryScore: 2.0,
		MinCoverage:      0.75,
	}
}

// QualityValidator flags unusable inputs and implausible results
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// SegmentationMetrics is what the validator needs from one run.
type SegmentationMetrics struct {
	Iris          models.IrisData
	PupilScore    float64
	IrisScore     float64
	PupilCoverage float64
	IrisCoverage  float64
}

// ValidateDimensions checks a decoded image before segmentation. Errors
// here mean the image must be rejected.
func (qv *QualityValidator) ValidateDimensions(width, height int) []QualityIssue {
	var issues []QualityIssue

	if width < qv.thresholds.MinWidth || height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "low_resolution",
			Message:     "Image is too small to locate an iris.",
			Severity:    "error",
			ActualValue: float64(min(width, height)),
			Threshold:   float64(min(qv.thresholds.MinWidth, qv.thresholds.MinHeight)),
		})
	}

	total := width * height
	if qv.thresholds.MaxTotalPixels > 0 && total > qv.thresholds.MaxTotalPixels {
		issues = append(issues, QualityIssue{
			Type:        "too_large",
			Message:     "Image has too many pixels.",
			Severity:    "error",
			ActualValue: float64(total),
			Threshold:   float64(qv.thresholds.MaxTotalPixels),
		})
	}

	if width > 0 && height > 0 {
		ratio := float64(max(width, height)) / float64(min(width, height))
		if ratio > qv.thresholds.MaxAspectRatio {
			issues = append(issues, QualityIssue{
				Type:        "aspect_ratio",
				Message:     "Image is very elongated; the eye occupies a small part of the canvas.",
				Severity:    "warning",
				ActualValue: ratio,
				Threshold:   qv.thresholds.MaxAspectRatio,
			})
		}
	}

	return issues
}

// ValidateSegmentation flags results that are geometrically implausible or
// weakly supported by the image. The pupil and iris are searched
// independently, so nesting is not guaranteed.
func (qv *QualityValidator) ValidateSegmentation(m SegmentationMetrics) []QualityIssue {
	var issues []QualityIssue
	d := m.Iris

	if d.PupilRadius >= d.IrisRadius {
		issues = append(issues, QualityIssue{
			Type:        "pupil_not_smaller",
			Message:     "Pupil radius is not smaller than the iris radius.",
			Severity:    "warning",
			ActualValue: float64(d.PupilRadius),
			Threshold:   float64(d.IrisRadius),
		})
	} else {
		dist := math.Hypot(float64(d.PupilCenterX-d.IrisCenterX), float64(d.PupilCenterY-d.IrisCenterY))
		if dist+float64(d.PupilRadius) > float64(d.IrisRadius) {
			issues = append(issues, QualityIssue{
				Type:        "pupil_outside_iris",
				Message:     "Pupil circle extends beyond the iris circle.",
				Severity:    "warning",
				ActualValue: dist,
				Threshold:   float64(d.IrisRadius - d.PupilRadius),
			})
		}
	}

	for _, b := range []struct {
		name     string
		score    float64
		coverage float64
	}{
		{"pupil", m.PupilScore, m.PupilCoverage},
		{"iris", m.IrisScore, m.IrisCoverage},
	} {
		if b.score < qv.thresholds.MinBoundaryScore {
			issues = append(issues, QualityIssue{
				Type:        "weak_" + b.name + "_edge",
				Message:     "The " + b.name + " boundary has little edge support.",
				Severity:    "warning",
				ActualValue: b.score,
				Threshold:   qv.thresholds.MinBoundaryScore,
			})
		}
		if b.coverage > 0 && b.coverage < qv.thresholds.MinCoverage {
			issues = append(issues, QualityIssue{
				Type:        "partial_" + b.name + "_boundary",
				Message:     "The " + b.name + " boundary is only partly visible.",
				Severity:    "info",
				ActualValue: b.coverage,
				Threshold:   qv.thresholds.MinCoverage,
			})
		}
	}

	return issues
}

// ConvertIssuesToMessages flattens issues to their messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
