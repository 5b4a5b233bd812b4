package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plan-annotator/internal/geometry"
	"plan-annotator/internal/models"
	"plan-annotator/internal/repository"
)

// ============================================================
// Building drafts
// ============================================================

const (
	MaxFloors             = 50
	MaxApartmentsPerFloor = 99
)

type ApartmentDraft struct {
	Area  float64 `yaml:"area" json:"area"`
	Rooms string  `yaml:"rooms,omitempty" json:"rooms,omitempty"`
	// Status applies to newly created apartments only; regenerated
	// apartments keep the status they already had.
	Status models.Status `yaml:"status,omitempty" json:"status,omitempty"`
}

type FloorDraft struct {
	FloorNumber       int                `yaml:"floorNumber" json:"floorNumber"`
	Apartments        []ApartmentDraft   `yaml:"apartments" json:"apartments"`
	FloorPlanImageURL string             `yaml:"floorPlanImageUrl,omitempty" json:"floorPlanImageUrl,omitempty"`
	AreaPercent       *geometry.AreaRect `yaml:"areaPercent,omitempty" json:"areaPercent,omitempty"`
}

// BuildingDraft is what an operator fills in to create a building (ID empty)
// or edit one (ID set).
type BuildingDraft struct {
	ID                 string                `yaml:"id,omitempty" json:"id,omitempty"`
	Name               string                `yaml:"name" json:"name"`
	ImageURL           string                `yaml:"imageUrl" json:"imageUrl"`
	FloorCount         int                   `yaml:"floorCount" json:"floorCount"`
	FloorBoundsPercent geometry.BoundaryList `yaml:"floorBoundsPercent,omitempty" json:"floorBoundsPercent,omitempty"`
	Floors             []FloorDraft          `yaml:"floors" json:"floors"`
}

// TotalFloors is the floor count clamped to 1..MaxFloors.
func (d BuildingDraft) TotalFloors() int {
	return clampInt(d.FloorCount, 1, MaxFloors)
}

func (d BuildingDraft) floor(number int) FloorDraft {
	for _, f := range d.Floors {
		if f.FloorNumber == number {
			return f
		}
	}
	return FloorDraft{FloorNumber: number}
}

// FloorRects returns the drawn rectangle of every floor that has one.
func (d BuildingDraft) FloorRects() map[int]geometry.AreaRect {
	out := make(map[int]geometry.AreaRect)
	for n := 1; n <= d.TotalFloors(); n++ {
		if r := d.floor(n).AreaPercent; r != nil {
			out[n] = *r
		}
	}
	return out
}

// WithFloorRects stores rectangles captured by the floor tool.
func (d BuildingDraft) WithFloorRects(rects map[int]geometry.AreaRect) BuildingDraft {
	floors := make([]FloorDraft, 0, d.TotalFloors())
	for n := 1; n <= d.TotalFloors(); n++ {
		f := d.floor(n)
		if r, ok := rects[n]; ok {
			f.AreaPercent = &r
		}
		floors = append(floors, f)
	}
	d.Floors = floors
	return d
}

// SectionLabel is the first letter of the name, uppercased, or "A".
func SectionLabel(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "A"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ============================================================
// Building editor
// ============================================================

type BuildingEditor struct {
	repo   *repository.BuildingRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewBuildingEditor(repo *repository.BuildingRepository, logger *zap.Logger) *BuildingEditor {
	return &BuildingEditor{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return "building-" + uuid.NewString() },
	}
}

// Validate checks a draft against the stored buildings without writing.
func (e *BuildingEditor) Validate(ctx context.Context, d BuildingDraft) error {
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
	if d.ImageURL == "" {
		verr.add(fmt.Errorf("building image: %w", ErrImageRequired))
	}

	total := d.TotalFloors()
	if len(d.FloorBoundsPercent) > 0 {
		if err := d.FloorBoundsPercent.Validate(total); err != nil {
			verr.add(fmt.Errorf("floor bounds: %w: %v", ErrBoundaryCount, err))
		}
	}
	if rects := d.FloorRects(); len(rects) > 0 && len(rects) != total {
		verr.add(fmt.Errorf("floor areas: %w: %d of %d floors drawn", ErrIncompleteSet, len(rects), total))
	}
	for _, f := range d.Floors {
		for i, a := range f.Apartments {
			if a.Status == "" {
				continue
			}
			if _, err := models.ParseStatus(string(a.Status)); err != nil {
				verr.add(fmt.Errorf("floor %d apartment %d: %w", f.FloorNumber, i+1, err))
			}
		}
	}
	return verr.orNil()
}

// Save validates the draft, regenerates the building's floors and
// apartments and writes it. Apartments whose label existed before keep their
// status, rooms and marker position.
func (e *BuildingEditor) Save(ctx context.Context, d BuildingDraft) (models.Building, error) {
	var existing *models.Building
	if d.ID != "" {
		b, err := e.repo.GetByID(ctx, d.ID)
		if err != nil {
			return models.Building{}, err
		}
		existing = &b
	}
	if err := e.Validate(ctx, d); err != nil {
		return models.Building{}, err
	}

	id := d.ID
	if id == "" {
		id = e.newID()
	}
	b := e.build(id, d, existing)
	if err := e.repo.Save(ctx, b); err != nil {
		return models.Building{}, err
	}
	e.logger.Info("building stored",
		zap.String("id", b.ID),
		zap.Bool("edit", existing != nil),
		zap.Int("floors", b.FloorCount),
	)
	return b, nil
}

func (e *BuildingEditor) build(id string, d BuildingDraft, existing *models.Building) models.Building {
	name := strings.TrimSpace(d.Name)
	section := SectionLabel(name)
	total := d.TotalFloors()

	prior := map[string]models.Apartment{}
	createdAt := e.now().UnixMilli()
	if existing != nil {
		createdAt = existing.CreatedAt
		for _, f := range existing.Floors {
			for _, a := range f.Apartments {
				prior[a.Label] = a
			}
		}
	}

	floors := make([]models.Floor, 0, total)
	for n := 1; n <= total; n++ {
		fd := d.floor(n)
		count := clampInt(len(fd.Apartments), 0, MaxApartmentsPerFloor)
		apartments := make([]models.Apartment, count)
		for i := 0; i < count; i++ {
			ad := fd.Apartments[i]
			a := models.Apartment{
				ID:      fmt.Sprintf("%s-f%d-a%d", id, n, i+1),
				Label:   fmt.Sprintf("%s%d-%d", section, n, i+1),
				Floor:   n,
				Section: section,
				Area:    maxFloat(ad.Area, 0),
				Status:  models.StatusAvailable,
				Rooms:   ad.Rooms,
			}
			if s, err := models.ParseStatus(string(ad.Status)); err == nil {
				a.Status = s
			}
			if old, ok := prior[a.Label]; ok {
				a.Status = old.Status
				a.DotPosition = old.DotPosition
				if a.Rooms == "" {
					a.Rooms = old.Rooms
				}
			}
			apartments[i] = a
		}
		floors = append(floors, models.Floor{
			FloorNumber:       n,
			Section:           section,
			Apartments:        apartments,
			FloorPlanImageURL: fd.FloorPlanImageURL,
			AreaPercent:       fd.AreaPercent,
		})
	}

	return models.Building{
		ID:                 id,
		Name:               name,
		SectionLabel:       section,
		ImageURL:           d.ImageURL,
		FloorCount:         total,
		Floors:             floors,
		FloorBoundsPercent: d.FloorBoundsPercent,
		CreatedAt:          createdAt,
	}.RecountAvailable()
}

// Draft loads a stored building as an editable draft.
func (e *BuildingEditor) Draft(ctx context.Context, id string) (BuildingDraft, error) {
	b, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return BuildingDraft{}, err
	}
	d := BuildingDraft{
		ID:                 b.ID,
		Name:               b.Name,
		ImageURL:           b.ImageURL,
		FloorCount:         b.FloorCount,
		FloorBoundsPercent: b.FloorBoundsPercent,
	}
	for _, f := range b.Floors {
		fd := FloorDraft{
			FloorNumber:       f.FloorNumber,
			FloorPlanImageURL: f.FloorPlanImageURL,
			AreaPercent:       f.AreaPercent,
		}
		for _, a := range f.Apartments {
			fd.Apartments = append(fd.Apartments, ApartmentDraft{Area: a.Area, Rooms: a.Rooms})
		}
		d.Floors = append(d.Floors, fd)
	}
	return d, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
