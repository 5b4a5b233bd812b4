package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plan-annotator/internal/geometry"
	"plan-annotator/internal/models"
	"plan-annotator/internal/repository"
)

// ============================================================
// Parking drafts
// ============================================================

const MaxSpacesPerSection = 200

type SectionDraft struct {
	// ID is empty for a section drawn in this edit.
	ID           string            `yaml:"id,omitempty" json:"id,omitempty"`
	Area         geometry.AreaRect `yaml:"area" json:"area"`
	PlanImageURL string            `yaml:"planImageUrl" json:"planImageUrl"`
	SpaceCount   int               `yaml:"spaceCount" json:"spaceCount"`
}

type ParkingDraft struct {
	ID               string         `yaml:"id,omitempty" json:"id,omitempty"`
	Name             string         `yaml:"name" json:"name"`
	OverviewImageURL string         `yaml:"overviewImageUrl" json:"overviewImageUrl"`
	Sections         []SectionDraft `yaml:"sections" json:"sections"`
}

// SectionRects returns the section areas keyed by 1-based section number,
// the shape the section tool is seeded with.
func (d ParkingDraft) SectionRects() map[int]geometry.AreaRect {
	out := make(map[int]geometry.AreaRect, len(d.Sections))
	for i, s := range d.Sections {
		out[i+1] = s.Area
	}
	return out
}

// WithSectionRects replaces section areas with a capture result. A section
// keeps its id and plan when its number is captured; numbers the capture
// skipped are dropped and new ones start without a plan.
func (d ParkingDraft) WithSectionRects(rects map[int]geometry.AreaRect) ParkingDraft {
	sections := make([]SectionDraft, 0, len(rects))
	for _, n := range slices.Sorted(maps.Keys(rects)) {
		if n < 1 {
			continue
		}
		var s SectionDraft
		if n-1 < len(d.Sections) {
			s = d.Sections[n-1]
		}
		s.Area = rects[n]
		sections = append(sections, s)
	}
	d.Sections = sections
	return d
}

// ============================================================
// Parking editor
// ============================================================

type ParkingEditor struct {
	repo      *repository.ParkingRepository
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	sectionID func() string
}

func NewParkingEditor(repo *repository.ParkingRepository, logger *zap.Logger) *ParkingEditor {
	return &ParkingEditor{
		repo:      repo,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return "parking-" + uuid.NewString() },
		sectionID: func() string { return uuid.NewString()[:8] },
	}
}

func (e *ParkingEditor) Validate(ctx context.Context, d ParkingDraft) error {
	verr := &ValidationError{}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		verr.add(fmt.Errorf("name: %w", ErrNameRequired))
	} else {
		taken, err := e.repo.IsNameTaken(ctx, name, d.ID)
		if err != nil {
			return err
		}
		if taken {
			verr.add(fmt.Errorf("name %q: %w", name, ErrDuplicateName))
		}
	}
	if d.OverviewImageURL == "" {
		verr.add(fmt.Errorf("overview image: %w", ErrImageRequired))
	}
	if len(d.Sections) == 0 {
		verr.add(ErrNoSections)
	}

	total := 0
	for i, s := range d.Sections {
		if s.PlanImageURL == "" {
			verr.add(fmt.Errorf("section %d plan: %w", i+1, ErrImageRequired))
		}
		count := clampInt(s.SpaceCount, 0, MaxSpacesPerSection)
		if count == 0 {
			verr.add(fmt.Errorf("section %d: %w", i+1, ErrNoUnits))
		}
		total += count
	}
	if len(d.Sections) > 0 && total == 0 {
		verr.add(fmt.Errorf("parking: %w", ErrNoUnits))
	}
	return verr.orNil()
}

// Save validates and writes the parking. Spaces are numbered P1.. within each
// section; a space whose (section, label) existed before keeps its id, status
// and marker position.
func (e *ParkingEditor) Save(ctx context.Context, d ParkingDraft) (models.ParkingConfig, error) {
	var existing *models.ParkingConfig
	if d.ID != "" {
		p, err := e.repo.GetByID(ctx, d.ID)
		if err != nil {
			return models.ParkingConfig{}, err
		}
		existing = &p
	}
	if err := e.Validate(ctx, d); err != nil {
		return models.ParkingConfig{}, err
	}

	id := d.ID
	if id == "" {
		id = e.newID()
	}
	p := e.build(id, d, existing)
	if err := e.repo.Save(ctx, p); err != nil {
		return models.ParkingConfig{}, err
	}
	e.logger.Info("parking stored",
		zap.String("id", p.ID),
		zap.Bool("edit", existing != nil),
		zap.Int("sections", len(p.Sections)),
		zap.Int("spaces", len(p.Spaces)),
	)
	return p, nil
}

type spaceKey struct {
	section string
	label   string
}

func (e *ParkingEditor) build(id string, d ParkingDraft, existing *models.ParkingConfig) models.ParkingConfig {
	prior := map[spaceKey]models.ParkingSpace{}
	createdAt := e.now().UnixMilli()
	if existing != nil {
		createdAt = existing.CreatedAt
		for _, sp := range existing.Spaces {
			prior[spaceKey{sp.SectionID, sp.Label}] = sp
		}
	}

	sections := make([]models.ParkingSection, len(d.Sections))
	var spaces []models.ParkingSpace
	for i, sd := range d.Sections {
		sectionID := sd.ID
		if sectionID == "" {
			sectionID = e.sectionID()
		}
		count := clampInt(sd.SpaceCount, 0, MaxSpacesPerSection)
		sections[i] = models.ParkingSection{
			ID:           sectionID,
			Area:         sd.Area,
			PlanImageURL: sd.PlanImageURL,
			SpaceCount:   count,
		}
		for n := 1; n <= count; n++ {
			label := fmt.Sprintf("P%d", n)
			sp := models.ParkingSpace{
				ID:           fmt.Sprintf("%s-%s-%s", id, sectionID, label),
				Label:        label,
				Status:       models.StatusAvailable,
				SectionID:    sectionID,
				SectionIndex: i,
			}
			if old, ok := prior[spaceKey{sectionID, label}]; ok {
				sp.ID = old.ID
				sp.Status = old.Status
				sp.DotPosition = old.DotPosition
			}
			spaces = append(spaces, sp)
		}
	}

	return models.ParkingConfig{
		ID:               id,
		Name:             strings.TrimSpace(d.Name),
		OverviewImageURL: d.OverviewImageURL,
		Sections:         sections,
		Spaces:           spaces,
		CreatedAt:        createdAt,
	}
}

// Draft loads a stored parking as an editable draft.
func (e *ParkingEditor) Draft(ctx context.Context, id string) (ParkingDraft, error) {
	p, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return ParkingDraft{}, err
	}
	d := ParkingDraft{
		ID:               p.ID,
		Name:             p.Name,
		OverviewImageURL: p.OverviewImageURL,
	}
	for _, s := range p.Sections {
		d.Sections = append(d.Sections, SectionDraft{
			ID:           s.ID,
			Area:         s.Area,
			PlanImageURL: s.PlanImageURL,
			SpaceCount:   s.SpaceCount,
		})
	}
	return d, nil
}
