package segmenter

import (
	"math"
	"testing"
)

// rampBuffer has a Sobel magnitude of exactly 24 at every interior point.
func rampBuffer(side int) *PixelBuffer {
	buf := newPixelBuffer(side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			buf.pix[y*side+x] = uint8(3 * x)
		}
	}
	return buf
}

func TestAngularTables(t *testing.T) {
	if cosTable[0] != 1 || sinTable[0] != 0 {
		t.Errorf("Expected first sample at angle 0, got cos=%f sin=%f", cosTable[0], sinTable[0])
	}
	// Sample 18 is 90 degrees.
	if math.Abs(cosTable[18]) > 1e-12 || math.Abs(sinTable[18]-1) > 1e-12 {
		t.Errorf("Expected sample 18 at 90 degrees, got cos=%f sin=%f", cosTable[18], sinTable[18])
	}
}

func TestSearchWindow(t *testing.T) {
	lo, hi := SearchWindow(256)
	if lo != 64 || hi != 192 {
		t.Errorf("Expected [64,192], got [%d,%d]", lo, hi)
	}
	if width := hi - lo + 1; width != 256/2+1 {
		t.Errorf("Expected window width %d, got %d", 256/2+1, width)
	}
}

func TestCoherenceScore_FullCoverage(t *testing.T) {
	buf := rampBuffer(64)
	score := CoherenceScore(buf, Circle{Point: pt(32, 32), R: 20})
	if math.Abs(score-24) > 1e-9 {
		t.Errorf("Expected score 24, got %f", score)
	}
}

func TestCoherenceScore_CoveragePenalty(t *testing.T) {
	buf := rampBuffer(64)

	// Centred at x=10 with r=20, samples 23..49 (115..245 degrees) fall left
	// of the margin: 45 of 72 remain, so the mean is scaled by 45/72.
	score := CoherenceScore(buf, Circle{Point: pt(10, 32), R: 20})
	want := 24.0 * 45.0 / 72.0
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected penalised score %f, got %f", want, score)
	}
}

func TestCoherenceScore_NoValidSamples(t *testing.T) {
	buf := uniformBuffer(64, 90)
	if score := CoherenceScore(buf, Circle{Point: pt(32, 32), R: 10}); score != 0 {
		t.Errorf("Expected zero score on a flat buffer, got %f", score)
	}

	// Entirely outside the canvas.
	if score := CoherenceScore(rampBuffer(64), Circle{Point: pt(500, 500), R: 5}); score != 0 {
		t.Errorf("Expected zero score outside the canvas, got %f", score)
	}
}

func TestLocate_DarkDisk(t *testing.T) {
	const (
		side   = 96
		center = 48
		radius = 16
	)
	buf := GaussianBlur(bufferFromGray(createEyeImage(side, center, center, radius, 0, 20, 0, 220)))

	got := Locate(buf, 10, 22)

	if absInt(got.X-center) > 2 || absInt(got.Y-center) > 2 {
		t.Errorf("Expected centre within 2px of (%d,%d), got %s", center, center, got.Circle)
	}
	if absInt(got.R-radius) > 1 {
		t.Errorf("Expected radius within 1 of %d, got %d", radius, got.R)
	}
	if got.Score <= 0 {
		t.Errorf("Expected a positive score, got %f", got.Score)
	}
}

func TestLocate_OffCentreDisk(t *testing.T) {
	buf := GaussianBlur(bufferFromGray(createEyeImage(96, 40, 55, 14, 0, 30, 0, 200)))

	got := Locate(buf, 10, 20)

	if absInt(got.X-40) > 2 || absInt(got.Y-55) > 2 || absInt(got.R-14) > 1 {
		t.Errorf("Expected circle near (40,55,14), got %s", got.Circle)
	}
}

func TestLocate_TiesKeepFirstCandidate(t *testing.T) {
	buf := uniformBuffer(64, 128)

	got := Locate(buf, 6, 10)

	lo, _ := SearchWindow(64)
	if got.X != lo || got.Y != lo || got.R != 6 {
		t.Errorf("Expected first candidate (%d,%d,6), got %s", lo, lo, got.Circle)
	}
	if got.Score != 0 {
		t.Errorf("Expected zero score, got %f", got.Score)
	}
}

func TestLocate_EmptyRadiusRange(t *testing.T) {
	buf := rampBuffer(32)

	got := Locate(buf, 9, 4)

	if got.X != 16 || got.Y != 16 || got.R != 9 || got.Score != 0 {
		t.Errorf("Expected (16,16,9) with zero score, got %s score=%f", got.Circle, got.Score)
	}
}

func TestCircle_String(t *testing.T) {
	c := Circle{Point: pt(3, 4), R: 5}
	if c.String() != "(3,4,5)" {
		t.Errorf("Unexpected string %q", c.String())
	}
}
