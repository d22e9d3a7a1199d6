package segmenter

import (
	"image"
	"math"
	"testing"
)

func pt(x, y int) image.Point {
	return image.Point{X: x, Y: y}
}

func TestMeasurePerimeter_Ramp(t *testing.T) {
	stats := MeasurePerimeter(rampBuffer(64), Circle{Point: pt(32, 32), R: 20})

	if stats.Valid != AngularSamples {
		t.Errorf("Expected %d valid samples, got %d", AngularSamples, stats.Valid)
	}
	if math.Abs(stats.Mean-24) > 1e-9 {
		t.Errorf("Expected mean 24, got %f", stats.Mean)
	}
	if stats.StdDev > 1e-9 {
		t.Errorf("Expected zero spread, got %f", stats.StdDev)
	}
	if stats.Coverage() != 1 {
		t.Errorf("Expected full coverage, got %f", stats.Coverage())
	}
}

func TestMeasurePerimeter_Flat(t *testing.T) {
	stats := MeasurePerimeter(uniformBuffer(64, 10), Circle{Point: pt(32, 32), R: 20})
	if stats != (PerimeterStats{}) {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestMeasurePerimeter_MatchesScore(t *testing.T) {
	buf := GaussianBlur(bufferFromGray(createEyeImage(96, 48, 48, 16, 0, 20, 0, 220)))
	c := Circle{Point: pt(48, 48), R: 16}

	stats := MeasurePerimeter(buf, c)
	score := CoherenceScore(buf, c)

	want := stats.Mean
	if stats.Coverage() < minCoverage {
		want *= stats.Coverage()
	}
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected score %f to match perimeter mean %f", score, want)
	}
	if stats.StdDev <= 0 {
		t.Errorf("Expected some spread along a rasterised circle, got %f", stats.StdDev)
	}
}
