package geometry

import "math"

// ============================================================
// Pointer mapping
// ============================================================

// PointFromPointer maps a client-space pointer position to percent
// coordinates of the given element box, clamped to [0,100].
func PointFromPointer(clientX, clientY float64, ref Bounds) Point {
	if ref.Width <= 0 || ref.Height <= 0 {
		return Point{}
	}
	return Point{
		X: clamp((clientX-ref.Left)/ref.Width*100, 0, 100),
		Y: clamp((clientY-ref.Top)/ref.Height*100, 0, 100),
	}
}

// RectFromDrag builds the rectangle spanned by a drag. Width and height never
// drop below MinRectSize so a plain click still yields a selectable shape.
func RectFromDrag(start, current Point) AreaRect {
	start, current = start.Clamp(), current.Clamp()
	return AreaRect{
		X:      math.Min(start.X, current.X),
		Y:      math.Min(start.Y, current.Y),
		Width:  math.Max(MinRectSize, math.Abs(current.X-start.X)),
		Height: math.Max(MinRectSize, math.Abs(current.Y-start.Y)),
	}
}

// ============================================================
// Default marker layout
// ============================================================

const dotMargin = 10.0

// DefaultDotPosition lays total markers out on a near-square grid inside a
// 10% margin and returns the slot for index. Deterministic for a given
// (index, total) so persisted and computed positions always agree.
func DefaultDotPosition(index, total int) Point {
	n := total
	if n < 1 {
		n = 1
	}
	i := index
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}

	width := 100 - 2*dotMargin
	height := 100 - 2*dotMargin
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))
	col := i % cols
	row := i / cols

	p := Point{X: 50, Y: 50}
	if cols > 1 {
		p.X = dotMargin + (float64(col)/float64(cols-1))*width
	}
	if rows > 1 {
		p.Y = dotMargin + (float64(row)/float64(rows-1))*height
	}
	return p
}

// ============================================================
// Floor strips
// ============================================================

// Strip is the horizontal band of one floor, measured from the image bottom.
type Strip struct {
	FloorNumber int     `json:"floorNumber"`
	Bottom      float64 `json:"bottom"`
	Top         float64 `json:"top"`
}

func (s Strip) Height() float64 { return s.Top - s.Bottom }

// CSSTop is the strip's top edge measured from the image top.
func (s Strip) CSSTop() float64 { return 100 - s.Top }

// Rect converts the strip to a full-width rectangle in image coordinates.
func (s Strip) Rect() AreaRect {
	return AreaRect{X: 0, Y: s.CSSTop(), Width: 100, Height: s.Height()}
}

// FloorStrips splits the image into one strip per floor, floor 1 at the
// bottom. Boundaries are used only when they hold exactly floorCount values;
// otherwise the floors share the height equally.
func FloorStrips(floorCount int, bounds BoundaryList) []Strip {
	if floorCount < 1 {
		return nil
	}
	useBounds := len(bounds) == floorCount
	strips := make([]Strip, floorCount)
	bottom := 0.0
	for i := range strips {
		top := float64(i+1) * 100 / float64(floorCount)
		if useBounds {
			top = bounds[i]
		}
		strips[i] = Strip{FloorNumber: i + 1, Bottom: bottom, Top: top}
		bottom = top
	}
	return strips
}
