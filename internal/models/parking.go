package models

import (
	"fmt"

	"plan-annotator/internal/geometry"
)

// ============================================================
// Parking
// ============================================================

type ParkingSection struct {
	ID           string            `json:"id,omitempty" yaml:"id,omitempty"`
	Area         geometry.AreaRect `json:"area" yaml:"area"`
	PlanImageURL string            `json:"planImageUrl" yaml:"planImageUrl"`
	SpaceCount   int               `json:"spaceCount" yaml:"spaceCount"`
}

// ParkingSpace belongs to a section through SectionID. SectionIndex is kept
// for readers of the stored layout and is rewritten by ReindexSpaces.
type ParkingSpace struct {
	ID           string          `json:"id" yaml:"id"`
	Label        string          `json:"label" yaml:"label"`
	Status       Status          `json:"status" yaml:"status"`
	SectionID    string          `json:"sectionId,omitempty" yaml:"sectionId,omitempty"`
	SectionIndex int             `json:"sectionIndex" yaml:"sectionIndex"`
	DotPosition  *geometry.Point `json:"dotPosition,omitempty" yaml:"dotPosition,omitempty"`
}

type ParkingConfig struct {
	ID               string           `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	OverviewImageURL string           `json:"overviewImageUrl" yaml:"overviewImageUrl"`
	Sections         []ParkingSection `json:"sections" yaml:"sections"`
	Spaces           []ParkingSpace   `json:"spaces" yaml:"spaces"`
	CreatedAt        int64            `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// LegacySectionID is the id given to a stored section that predates ids.
func LegacySectionID(index int) string {
	return fmt.Sprintf("s%d", index+1)
}

// SectionIndex maps section id to its position.
func (p ParkingConfig) SectionIndex() map[string]int {
	out := make(map[string]int, len(p.Sections))
	for i, s := range p.Sections {
		out[s.ID] = i
	}
	return out
}

// WithSectionIDs fills in ids for sections and spaces stored before sections
// had one. Spaces without a section id take it from their index.
func (p ParkingConfig) WithSectionIDs() ParkingConfig {
	sections := make([]ParkingSection, len(p.Sections))
	for i, s := range p.Sections {
		if s.ID == "" {
			s.ID = LegacySectionID(i)
		}
		sections[i] = s
	}
	spaces := make([]ParkingSpace, len(p.Spaces))
	for i, sp := range p.Spaces {
		if sp.SectionID == "" && sp.SectionIndex >= 0 && sp.SectionIndex < len(sections) {
			sp.SectionID = sections[sp.SectionIndex].ID
		}
		spaces[i] = sp
	}
	p.Sections = sections
	p.Spaces = spaces
	return p
}

// ReindexSpaces rewrites every space's SectionIndex from its SectionID, so
// sections can be reordered without breaking the back-reference.
func (p ParkingConfig) ReindexSpaces() ParkingConfig {
	index := p.SectionIndex()
	spaces := make([]ParkingSpace, len(p.Spaces))
	for i, sp := range p.Spaces {
		if idx, ok := index[sp.SectionID]; ok {
			sp.SectionIndex = idx
		}
		spaces[i] = sp
	}
	p.Spaces = spaces
	return p
}

// Section returns the section at index.
func (p ParkingConfig) Section(index int) (ParkingSection, bool) {
	if index < 0 || index >= len(p.Sections) {
		return ParkingSection{}, false
	}
	return p.Sections[index], true
}

// SpacesInSection returns the spaces of the section at index, in order.
func (p ParkingConfig) SpacesInSection(index int) []ParkingSpace {
	var out []ParkingSpace
	for _, sp := range p.Spaces {
		if sp.SectionIndex == index {
			out = append(out, sp)
		}
	}
	return out
}

// AvailableInSection counts available spaces of the section at index.
func (p ParkingConfig) AvailableInSection(index int) int {
	n := 0
	for _, sp := range p.SpacesInSection(index) {
		if sp.Status.IsAvailable() {
			n++
		}
	}
	return n
}

// DotPosition is where the space renders on its section plan: its stored
// position or its default slot among the section's spaces.
func (p ParkingConfig) DotPosition(spaceID string) (geometry.Point, bool) {
	for _, sp := range p.Spaces {
		if sp.ID != spaceID {
			continue
		}
		if sp.DotPosition != nil {
			return *sp.DotPosition, true
		}
		section := p.SpacesInSection(sp.SectionIndex)
		for i, other := range section {
			if other.ID == spaceID {
				return geometry.DefaultDotPosition(i, len(section)), true
			}
		}
	}
	return geometry.Point{}, false
}
