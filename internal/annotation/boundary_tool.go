package annotation

import (
	"fmt"
	"sort"

	"plan-annotator/internal/geometry"
)

// ============================================================
// Boundary-line tool
// ============================================================

const (
	minBoundary = 2.0
	maxBoundary = 98.0
)

// BoundaryTool splits an image into unitCount strips from unitCount-1 clicks.
type BoundaryTool struct {
	unitCount int
	placed    []float64
}

func NewBoundaryTool(unitCount int) *BoundaryTool {
	if unitCount < 1 {
		unitCount = 1
	}
	return &BoundaryTool{unitCount: unitCount}
}

func (t *BoundaryTool) Kind() string { return KindBoundaries }

// Needed is the number of lines to place.
func (t *BoundaryTool) Needed() int { return t.unitCount - 1 }

// Placed returns the placed lines in ascending order.
func (t *BoundaryTool) Placed() []float64 {
	return append([]float64(nil), t.placed...)
}

// Click places a line at the pointer's height within the container. Lines
// are measured from the bottom edge, the frame FloorStrips reads them in.
func (t *BoundaryTool) Click(clientY float64, container geometry.Bounds) bool {
	if container.Height <= 0 {
		return false
	}
	return t.ClickRatio((container.Top + container.Height - clientY) / container.Height)
}

// ClickRatio places a line at ratio (0–1) of the container height, counted
// from the bottom. Clicks past the cap or on an existing line are ignored.
func (t *BoundaryTool) ClickRatio(ratio float64) bool {
	if len(t.placed) >= t.Needed() {
		return false
	}
	percent := ratio * 100
	if percent < minBoundary {
		percent = minBoundary
	}
	if percent > maxBoundary {
		percent = maxBoundary
	}
	for _, v := range t.placed {
		if v == percent {
			return false
		}
	}
	t.placed = append(t.placed, percent)
	sort.Float64s(t.placed)
	return true
}

// Reset clears every placed line.
func (t *BoundaryTool) Reset() {
	t.placed = nil
}

// Done returns the sorted lines with the closing 100.
func (t *BoundaryTool) Done() (geometry.BoundaryList, error) {
	if len(t.placed) != t.Needed() {
		return nil, fmt.Errorf("%w: placed %d of %d boundaries", ErrIncomplete, len(t.placed), t.Needed())
	}
	out := make(geometry.BoundaryList, 0, t.unitCount)
	out = append(out, t.placed...)
	return append(out, 100), nil
}
