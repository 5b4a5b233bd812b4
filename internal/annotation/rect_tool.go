package annotation

import (
	"fmt"
	"sort"

	"plan-annotator/internal/geometry"
)

// ============================================================
// Rectangle-per-unit tool
// ============================================================

// RectMode selects how the cursor advances through units.
type RectMode int

const (
	// FixedUnits walks a known list of units (floors) and completes on the last one.
	FixedUnits RectMode = iota
	// OpenUnits grows one unit at a time (parking sections) until Done.
	OpenUnits
)

// RectTool captures one rectangle per unit from pointer drags.
type RectTool struct {
	mode      RectMode
	units     []int
	cursor    int
	committed map[int]geometry.AreaRect

	dragging    bool
	dragStart   geometry.Point
	dragCurrent geometry.Point
	completed   bool
}

// NewFloorRectTool starts a fixed tool over floorNumbers. initial pre-seeds
// rectangles when editing an existing building.
func NewFloorRectTool(floorNumbers []int, initial map[int]geometry.AreaRect) *RectTool {
	units := append([]int(nil), floorNumbers...)
	t := &RectTool{
		mode:      FixedUnits,
		units:     units,
		committed: make(map[int]geometry.AreaRect),
	}
	for _, u := range units {
		if r, ok := initial[u]; ok {
			t.committed[u] = r
		}
	}
	return t
}

// NewSectionRectTool starts an open-ended tool. With pre-seeded sections the
// cursor starts after the highest existing one.
func NewSectionRectTool(initial map[int]geometry.AreaRect) *RectTool {
	t := &RectTool{
		mode:      OpenUnits,
		cursor:    1,
		committed: make(map[int]geometry.AreaRect),
	}
	for u, r := range initial {
		t.committed[u] = r
		if u+1 > t.cursor {
			t.cursor = u + 1
		}
	}
	return t
}

func (t *RectTool) Kind() string {
	if t.mode == FixedUnits {
		return KindFloorRects
	}
	return KindSectionRects
}

// Current returns the unit being captured.
func (t *RectTool) Current() int {
	if t.mode == OpenUnits {
		return t.cursor
	}
	if len(t.units) == 0 {
		return 0
	}
	return t.units[t.cursor]
}

func (t *RectTool) isLast() bool {
	return t.mode == FixedUnits && t.cursor >= len(t.units)-1
}

// Completed reports whether the fixed variant captured its last unit.
func (t *RectTool) Completed() bool { return t.completed }

// Has reports whether unit has a committed rectangle.
func (t *RectTool) Has(unit int) bool {
	_, ok := t.committed[unit]
	return ok
}

// ============================================================
// Pointer events
// ============================================================

func (t *RectTool) PointerDown(p geometry.Point) {
	if t.mode == FixedUnits && len(t.units) == 0 {
		return
	}
	t.dragging = true
	t.dragStart = p
	t.dragCurrent = p
}

func (t *RectTool) PointerMove(p geometry.Point) {
	if !t.dragging {
		return
	}
	t.dragCurrent = p
}

// PointerUp commits the drag for the current unit. It returns true when the
// fixed variant just captured its last unit.
func (t *RectTool) PointerUp() bool {
	if !t.dragging {
		return false
	}
	unit := t.Current()
	t.committed[unit] = geometry.RectFromDrag(t.dragStart, t.dragCurrent)
	t.clearDrag()

	if t.mode == OpenUnits {
		return false
	}
	if t.isLast() {
		t.completed = true
		return true
	}
	t.cursor++
	return false
}

// PointerLeave finishes a drag that leaves the image. A press without any
// move commits a minimum-size rectangle at the press point.
func (t *RectTool) PointerLeave() bool {
	return t.PointerUp()
}

// Preview returns the rectangle currently being dragged.
func (t *RectTool) Preview() (geometry.AreaRect, bool) {
	if !t.dragging {
		return geometry.AreaRect{}, false
	}
	return geometry.RectFromDrag(t.dragStart, t.dragCurrent), true
}

func (t *RectTool) clearDrag() {
	t.dragging = false
	t.dragStart = geometry.Point{}
	t.dragCurrent = geometry.Point{}
}

// ============================================================
// Navigation
// ============================================================

// RedrawCurrent discards the committed rectangle of the current unit.
func (t *RectTool) RedrawCurrent() {
	delete(t.committed, t.Current())
	t.clearDrag()
	t.completed = false
}

// Back moves the cursor to the previous unit, never before the first.
func (t *RectTool) Back() {
	t.clearDrag()
	t.completed = false
	if t.mode == OpenUnits {
		if t.cursor > 1 {
			t.cursor--
		}
		return
	}
	if t.cursor > 0 {
		t.cursor--
	}
}

// Next advances a fixed tool once the current unit is drawn.
func (t *RectTool) Next() error {
	if t.mode != FixedUnits {
		return fmt.Errorf("%w: next is only valid for floor rectangles", ErrInvalidAction)
	}
	if !t.Has(t.Current()) {
		return fmt.Errorf("%w: unit %d has no rectangle", ErrIncomplete, t.Current())
	}
	if t.isLast() {
		return fmt.Errorf("%w: already at the last unit", ErrInvalidAction)
	}
	t.clearDrag()
	t.cursor++
	return nil
}

// AddAnother opens the next section once the current one is drawn.
func (t *RectTool) AddAnother() error {
	if t.mode != OpenUnits {
		return fmt.Errorf("%w: add is only valid for section rectangles", ErrInvalidAction)
	}
	if !t.Has(t.cursor) {
		return fmt.Errorf("%w: section %d has no rectangle", ErrIncomplete, t.cursor)
	}
	t.clearDrag()
	t.cursor++
	return nil
}

// Done returns the captured mapping. The fixed variant needs every unit, the
// open variant at least one.
func (t *RectTool) Done() (map[int]geometry.AreaRect, error) {
	if t.mode == FixedUnits {
		for _, u := range t.units {
			if !t.Has(u) {
				return nil, fmt.Errorf("%w: floor %d has no rectangle", ErrIncomplete, u)
			}
		}
	} else if len(t.committed) == 0 {
		return nil, fmt.Errorf("%w: draw at least one section", ErrIncomplete)
	}
	t.completed = true
	return t.Result(), nil
}

// Result copies the committed rectangles.
func (t *RectTool) Result() map[int]geometry.AreaRect {
	out := make(map[int]geometry.AreaRect, len(t.committed))
	for u, r := range t.committed {
		out[u] = r
	}
	return out
}

// Units lists the units that have a rectangle, ascending.
func (t *RectTool) Units() []int {
	units := make([]int, 0, len(t.committed))
	for u := range t.committed {
		units = append(units, u)
	}
	sort.Ints(units)
	return units
}
