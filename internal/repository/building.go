package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"plan-annotator/internal/geometry"
	"plan-annotator/internal/models"
	"plan-annotator/internal/store"
)

// ============================================================
// Building Repository
// ============================================================

type BuildingRepository struct {
	items  *store.Collection[models.Building]
	logger *zap.Logger
}

func NewBuildingRepository(kv store.KV, logger *zap.Logger) *BuildingRepository {
	return &BuildingRepository{
		items:  store.NewCollection[models.Building](kv, store.BuildingsKey, logger),
		logger: logger,
	}
}

// List returns every building in stored order.
func (r *BuildingRepository) List(ctx context.Context) ([]models.Building, error) {
	list, err := r.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = list[i].RecountAvailable()
	}
	return list, nil
}

func (r *BuildingRepository) GetByID(ctx context.Context, id string) (models.Building, error) {
	list, err := r.List(ctx)
	if err != nil {
		return models.Building{}, err
	}
	for _, b := range list {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Building{}, fmt.Errorf("building %s: %w", id, ErrNotFound)
}

// Save replaces the building with the same id or appends it.
func (r *BuildingRepository) Save(ctx context.Context, b models.Building) error {
	b = b.RecountAvailable()
	err := r.items.Mutate(ctx, func(list []models.Building) ([]models.Building, error) {
		return store.ReplaceOrAppend(list, b, func(v models.Building) bool { return v.ID == b.ID }), nil
	})
	if err != nil {
		return fmt.Errorf("save building %s: %w", b.ID, err)
	}
	r.logger.Info("building saved", zap.String("id", b.ID), zap.String("name", b.Name))
	return nil
}

func (r *BuildingRepository) Delete(ctx context.Context, id string) error {
	err := r.items.Mutate(ctx, func(list []models.Building) ([]models.Building, error) {
		out := make([]models.Building, 0, len(list))
		for _, b := range list {
			if b.ID != id {
				out = append(out, b)
			}
		}
		if len(out) == len(list) {
			return nil, ErrNotFound
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete building %s: %w", id, err)
	}
	r.logger.Info("building deleted", zap.String("id", id))
	return nil
}

// IsNameTaken reports whether another building (any id but excludeID) has
// the same trimmed, case-insensitive name.
func (r *BuildingRepository) IsNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	list, err := r.items.GetAll(ctx)
	if err != nil {
		return false, err
	}
	want := normalizeName(name)
	for _, b := range list {
		if b.ID != excludeID && normalizeName(b.Name) == want {
			return true, nil
		}
	}
	return false, nil
}

// UpdateApartmentStatus sets one apartment's status and refreshes the
// floor's availableCount in the same write.
func (r *BuildingRepository) UpdateApartmentStatus(ctx context.Context, buildingID string, floorNumber int, apartmentID string, status models.Status) error {
	status = status.Normalize()
	err := r.updateApartment(ctx, buildingID, floorNumber, apartmentID, func(a *models.Apartment) {
		a.Status = status
	})
	if err != nil {
		return err
	}
	r.logger.Debug("apartment status updated",
		zap.String("building", buildingID),
		zap.Int("floor", floorNumber),
		zap.String("apartment", apartmentID),
		zap.String("status", string(status)),
	)
	return nil
}

// UpdateApartmentDotPosition stores where the apartment's marker renders on
// its floor plan.
func (r *BuildingRepository) UpdateApartmentDotPosition(ctx context.Context, buildingID string, floorNumber int, apartmentID string, p geometry.Point) error {
	p = p.Clamp()
	return r.updateApartment(ctx, buildingID, floorNumber, apartmentID, func(a *models.Apartment) {
		a.DotPosition = &p
	})
}

func (r *BuildingRepository) updateApartment(ctx context.Context, buildingID string, floorNumber int, apartmentID string, change func(*models.Apartment)) error {
	err := r.items.Mutate(ctx, func(list []models.Building) ([]models.Building, error) {
		for bi, b := range list {
			if b.ID != buildingID {
				continue
			}
			for fi, f := range b.Floors {
				if f.FloorNumber != floorNumber {
					continue
				}
				ai := f.ApartmentIndex(apartmentID)
				if ai < 0 {
					return nil, ErrNotFound
				}
				apartments := append([]models.Apartment(nil), f.Apartments...)
				change(&apartments[ai])
				f.Apartments = apartments

				floors := append([]models.Floor(nil), b.Floors...)
				floors[fi] = f
				b.Floors = floors

				out := append([]models.Building(nil), list...)
				out[bi] = b.RecountAvailable()
				return out, nil
			}
			return nil, ErrNotFound
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("building %s floor %d apartment %s: %w", buildingID, floorNumber, apartmentID, err)
	}
	return nil
}
