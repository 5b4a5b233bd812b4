package models

import "plan-annotator/internal/geometry"

// ============================================================
// Building
// ============================================================

type Apartment struct {
	ID          string          `json:"id" yaml:"id"`
	Label       string          `json:"label" yaml:"label"`
	Floor       int             `json:"floor" yaml:"floor"`
	Section     string          `json:"section" yaml:"section"`
	Area        float64         `json:"area" yaml:"area"`
	Status      Status          `json:"status" yaml:"status"`
	Rooms       string          `json:"rooms,omitempty" yaml:"rooms,omitempty"`
	DotPosition *geometry.Point `json:"dotPosition,omitempty" yaml:"dotPosition,omitempty"`
}

type Floor struct {
	FloorNumber       int                `json:"floorNumber" yaml:"floorNumber"`
	Section           string             `json:"section" yaml:"section"`
	AvailableCount    int                `json:"availableCount" yaml:"availableCount"`
	Apartments        []Apartment        `json:"apartments" yaml:"apartments"`
	FloorPlanImageURL string             `json:"floorPlanImageUrl,omitempty" yaml:"floorPlanImageUrl,omitempty"`
	AreaPercent       *geometry.AreaRect `json:"areaPercent,omitempty" yaml:"areaPercent,omitempty"`
}

// CountAvailable counts apartments whose status is available.
func (f Floor) CountAvailable() int {
	n := 0
	for _, a := range f.Apartments {
		if a.Status.IsAvailable() {
			n++
		}
	}
	return n
}

// ApartmentIndex returns the position of the apartment with id, or -1.
func (f Floor) ApartmentIndex(id string) int {
	for i, a := range f.Apartments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// DotPositions returns where every apartment dot renders, in plan order.
func (f Floor) DotPositions() []geometry.Point {
	out := make([]geometry.Point, len(f.Apartments))
	for i, a := range f.Apartments {
		if a.DotPosition != nil {
			out[i] = *a.DotPosition
			continue
		}
		out[i] = geometry.DefaultDotPosition(i, len(f.Apartments))
	}
	return out
}

type Building struct {
	ID                 string                `json:"id" yaml:"id"`
	Name               string                `json:"name" yaml:"name"`
	SectionLabel       string                `json:"sectionLabel" yaml:"sectionLabel"`
	ImageURL           string                `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	FloorCount         int                   `json:"floorCount" yaml:"floorCount"`
	Floors             []Floor               `json:"floors" yaml:"floors"`
	FloorBoundsPercent geometry.BoundaryList `json:"floorBoundsPercent,omitempty" yaml:"floorBoundsPercent,omitempty"`
	CreatedAt          int64                 `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Floor returns the floor with the given number.
func (b Building) Floor(number int) (Floor, bool) {
	for _, f := range b.Floors {
		if f.FloorNumber == number {
			return f, true
		}
	}
	return Floor{}, false
}

// UsesShapeButtons reports whether any floor has a drawn rectangle.
func (b Building) UsesShapeButtons() bool {
	for _, f := range b.Floors {
		if f.AreaPercent != nil {
			return true
		}
	}
	return false
}

// FloorButtons returns the clickable region of every floor: the drawn
// rectangle when present, otherwise its strip.
func (b Building) FloorButtons() map[int]geometry.AreaRect {
	out := make(map[int]geometry.AreaRect, len(b.Floors))
	if b.UsesShapeButtons() {
		for _, f := range b.Floors {
			if f.AreaPercent != nil {
				out[f.FloorNumber] = *f.AreaPercent
			}
		}
		return out
	}
	for _, s := range geometry.FloorStrips(b.FloorCount, b.FloorBoundsPercent) {
		out[s.FloorNumber] = s.Rect()
	}
	return out
}

// AvailableCount sums the available apartments of every floor.
func (b Building) AvailableCount() int {
	n := 0
	for _, f := range b.Floors {
		n += f.AvailableCount
	}
	return n
}

// RecountAvailable refreshes every floor's derived availableCount.
func (b Building) RecountAvailable() Building {
	floors := make([]Floor, len(b.Floors))
	for i, f := range b.Floors {
		f.AvailableCount = f.CountAvailable()
		floors[i] = f
	}
	b.Floors = floors
	return b
}
