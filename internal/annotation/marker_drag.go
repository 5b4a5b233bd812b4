package annotation

import (
	"context"
	"fmt"

	"plan-annotator/internal/geometry"
)

// ============================================================
// Drag-to-reposition marker tool
// ============================================================

// Marker is a status dot as stored on its owning unit.
type Marker struct {
	ID       string
	Position *geometry.Point
	Index    int
	Total    int
}

// Resolved returns the stored position or the default grid slot.
func (m Marker) Resolved() geometry.Point {
	if m.Position != nil {
		return *m.Position
	}
	return geometry.DefaultDotPosition(m.Index, m.Total)
}

// CommitFunc persists a marker's final position.
type CommitFunc func(ctx context.Context, markerID string, p geometry.Point) error

// MarkerDrag moves one marker at a time over a plan image.
type MarkerDrag struct {
	commit   CommitFunc
	active   bool
	markerID string
	live     geometry.Point
}

func NewMarkerDrag(commit CommitFunc) *MarkerDrag {
	return &MarkerDrag{commit: commit}
}

func (d *MarkerDrag) Kind() string { return KindMarker }

// PointerDown starts dragging m. Presses from an embedded status control and
// presses while another drag is active are ignored.
func (d *MarkerDrag) PointerDown(m Marker, fromControl bool) bool {
	if fromControl || d.active {
		return false
	}
	d.active = true
	d.markerID = m.ID
	d.live = m.Resolved()
	return true
}

// PointerMove follows the pointer anywhere in the viewport.
func (d *MarkerDrag) PointerMove(p geometry.Point) {
	if !d.active {
		return
	}
	d.live = p.Clamp()
}

// PointerUp commits the live position and ends the drag.
func (d *MarkerDrag) PointerUp(ctx context.Context) error {
	if !d.active {
		return nil
	}
	id, pos := d.markerID, d.live
	d.Cancel()
	if d.commit == nil {
		return nil
	}
	if err := d.commit(ctx, id, pos); err != nil {
		return fmt.Errorf("commit marker %s: %w", id, err)
	}
	return nil
}

// Cancel drops the drag without committing.
func (d *MarkerDrag) Cancel() {
	d.active = false
	d.markerID = ""
	d.live = geometry.Point{}
}

// Dragging returns the marker being dragged, if any.
func (d *MarkerDrag) Dragging() (string, bool) {
	return d.markerID, d.active
}

// Position is where m should be rendered right now.
func (d *MarkerDrag) Position(m Marker) geometry.Point {
	if d.active && d.markerID == m.ID {
		return d.live
	}
	return m.Resolved()
}
