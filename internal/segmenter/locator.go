package segmenter

import (
	"fmt"
	"image"
	"math"
)

const (
	// AngularSamples is the number of perimeter points scored per circle,
	// one every 5 degrees.
	AngularSamples = 72

	// sampleMargin keeps perimeter samples far enough from the canvas edge
	// for the 3x3 gradient.
	sampleMargin = 2

	// minCoverage is the fraction of valid samples below which a circle's
	// mean gradient is scaled down by its coverage.
	minCoverage = 0.75
)

// cosTable and sinTable hold the sample angles 2*pi*i/AngularSamples.
var cosTable, sinTable [AngularSamples]float64

func init() {
	for i := 0; i < AngularSamples; i++ {
		angle := 2 * math.Pi * float64(i) / AngularSamples
		cosTable[i] = math.Cos(angle)
		sinTable[i] = math.Sin(angle)
	}
}

// Circle is a centre point and radius on the normalized canvas.
type Circle struct {
	image.Point
	R int
}

func (c Circle) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.R)
}

// Boundary is the best circle found by one search, with its coherence score.
type Boundary struct {
	Circle
	Score float64
}

// SearchWindow returns the inclusive range scanned for circle centres on a
// canvas of the given side: side/2 +/- side/4, on both axes.
func SearchWindow(side int) (lo, hi int) {
	center := side / 2
	reach := side / 4
	return center - reach, center + reach
}

// Locate runs the exhaustive integro-differential search: every centre in the
// search window and every radius in [minRadius, maxRadius] is scored, and
// the highest scoring circle wins. Candidates are visited row by row, then
// column, then radius; a later candidate only replaces the best one when its
// score is strictly greater, so ties keep the first circle found.
//
// If the radius range is empty the centre of the canvas at minRadius is
// returned with a zero score.
func Locate(buf *PixelBuffer, minRadius, maxRadius int) Boundary {
	lo, hi := SearchWindow(buf.side)
	center := buf.side / 2

	best := Boundary{
		Circle: Circle{Point: image.Point{X: center, Y: center}, R: minRadius},
		Score:  -1,
	}

	for cy := lo; cy <= hi; cy++ {
		for cx := lo; cx <= hi; cx++ {
			for r := minRadius; r <= maxRadius; r++ {
				score := coherence(buf, cx, cy, r)
				if score > best.Score {
					best.Score = score
					best.X = cx
					best.Y = cy
					best.R = r
				}
			}
		}
	}

	if best.Score < 0 {
		best.Score = 0
	}
	return best
}

// CoherenceScore scores c on buf: the mean positive gradient magnitude over
// the perimeter samples that fall inside the canvas margin, scaled by the
// valid fraction when fewer than 75% of the samples count.
func CoherenceScore(buf *PixelBuffer, c Circle) float64 {
	return coherence(buf, c.X, c.Y, c.R)
}

func coherence(buf *PixelBuffer, cx, cy, r int) float64 {
	var (
		sum   float64
		valid int
	)
	forEachSample(buf, cx, cy, r, func(g float64) {
		sum += g
		valid++
	})

	if valid == 0 {
		return 0
	}

	score := sum / float64(valid)
	if coverage := float64(valid) / AngularSamples; coverage < minCoverage {
		score *= coverage
	}
	return score
}

// forEachSample calls fn with the gradient magnitude of each perimeter sample
// of circle (cx, cy, r) that lies inside the margin and has a positive
// gradient.
func forEachSample(buf *PixelBuffer, cx, cy, r int, fn func(g float64)) {
	limit := buf.side - sampleMargin
	fr := float64(r)
	for i := 0; i < AngularSamples; i++ {
		// Conversion truncates toward zero, like the integer cast the
		// sample positions have always used.
		x := int(float64(cx) + fr*cosTable[i])
		y := int(float64(cy) + fr*sinTable[i])

		if x < sampleMargin || x >= limit || y < sampleMargin || y >= limit {
			continue
		}

		if g := Gradient(buf, x, y); g > 0 {
			fn(g)
		}
	}
}
