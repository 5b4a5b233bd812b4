package annotation

import "errors"

var (
	// ErrIncomplete is returned when a tool is asked to finish before every
	// required unit has been captured.
	ErrIncomplete = errors.New("annotation incomplete")
	// ErrInvalidAction is returned for actions the tool variant does not support.
	ErrInvalidAction = errors.New("invalid annotation action")
)

// Tool kinds.
const (
	KindFloorRects   = "floor-rects"
	KindSectionRects = "section-rects"
	KindBoundaries   = "boundaries"
	KindMarker       = "marker"
)
