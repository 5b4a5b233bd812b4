package geometry

import (
	"errors"
	"fmt"
)

// ============================================================
// Geometry primitives
// ============================================================

// All coordinates are percentages (0–100) of the reference image's own
// rendered bounding box, never of the surrounding container.

// MinRectSize is the smallest width/height a captured rectangle can have.
const MinRectSize = 2.0

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Clamp returns p with both axes limited to [0,100].
func (p Point) Clamp() Point {
	return Point{X: clamp(p.X, 0, 100), Y: clamp(p.Y, 0, 100)}
}

type AreaRect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Overflows reports whether the rectangle extends past the image edge.
// Capture never clamps this, so consumers have to tolerate it.
func (r AreaRect) Overflows() bool {
	return r.X+r.Width > 100 || r.Y+r.Height > 100
}

// Bounds is the on-screen box of a reference element, in client pixels.
type Bounds struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ============================================================
// Boundary lists
// ============================================================

var ErrInvalidBoundaries = errors.New("invalid floor boundaries")

// BoundaryList holds the top edge of every floor strip; the last value is 100.
type BoundaryList []float64

// Validate checks the list against the number of units it splits.
func (b BoundaryList) Validate(unitCount int) error {
	if len(b) != unitCount {
		return fmt.Errorf("%w: got %d values for %d floors", ErrInvalidBoundaries, len(b), unitCount)
	}
	if len(b) == 0 {
		return nil
	}
	if b[len(b)-1] != 100 {
		return fmt.Errorf("%w: last value must be 100, got %v", ErrInvalidBoundaries, b[len(b)-1])
	}
	prev := 0.0
	for i, v := range b[:len(b)-1] {
		if v <= prev || v >= 100 {
			return fmt.Errorf("%w: value %d (%v) is out of order", ErrInvalidBoundaries, i, v)
		}
		prev = v
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
