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
// Parking Repository
// ============================================================

type ParkingRepository struct {
	items  *store.Collection[models.ParkingConfig]
	logger *zap.Logger
}

func NewParkingRepository(kv store.KV, logger *zap.Logger) *ParkingRepository {
	return &ParkingRepository{
		items:  store.NewCollection[models.ParkingConfig](kv, store.ParkingsKey, logger),
		logger: logger,
	}
}

// resolve brings stored configs up to date: every section gets an id and
// every space's sectionIndex follows its section id.
func resolve(p models.ParkingConfig) models.ParkingConfig {
	return p.WithSectionIDs().ReindexSpaces()
}

func (r *ParkingRepository) List(ctx context.Context) ([]models.ParkingConfig, error) {
	list, err := r.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = resolve(list[i])
	}
	return list, nil
}

func (r *ParkingRepository) GetByID(ctx context.Context, id string) (models.ParkingConfig, error) {
	list, err := r.List(ctx)
	if err != nil {
		return models.ParkingConfig{}, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return models.ParkingConfig{}, fmt.Errorf("parking %s: %w", id, ErrNotFound)
}

func (r *ParkingRepository) Save(ctx context.Context, p models.ParkingConfig) error {
	p = resolve(p)
	err := r.items.Mutate(ctx, func(list []models.ParkingConfig) ([]models.ParkingConfig, error) {
		return store.ReplaceOrAppend(list, p, func(v models.ParkingConfig) bool { return v.ID == p.ID }), nil
	})
	if err != nil {
		return fmt.Errorf("save parking %s: %w", p.ID, err)
	}
	r.logger.Info("parking saved",
		zap.String("id", p.ID),
		zap.String("name", p.Name),
		zap.Int("sections", len(p.Sections)),
		zap.Int("spaces", len(p.Spaces)),
	)
	return nil
}

func (r *ParkingRepository) Delete(ctx context.Context, id string) error {
	err := r.items.Mutate(ctx, func(list []models.ParkingConfig) ([]models.ParkingConfig, error) {
		out := make([]models.ParkingConfig, 0, len(list))
		for _, p := range list {
			if p.ID != id {
				out = append(out, p)
			}
		}
		if len(out) == len(list) {
			return nil, ErrNotFound
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("delete parking %s: %w", id, err)
	}
	r.logger.Info("parking deleted", zap.String("id", id))
	return nil
}

func (r *ParkingRepository) IsNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	list, err := r.items.GetAll(ctx)
	if err != nil {
		return false, err
	}
	want := normalizeName(name)
	for _, p := range list {
		if p.ID != excludeID && normalizeName(p.Name) == want {
			return true, nil
		}
	}
	return false, nil
}

func (r *ParkingRepository) UpdateSpaceStatus(ctx context.Context, parkingID, spaceID string, status models.Status) error {
	status = status.Normalize()
	err := r.updateSpace(ctx, parkingID, spaceID, func(sp *models.ParkingSpace) {
		sp.Status = status
	})
	if err != nil {
		return err
	}
	r.logger.Debug("space status updated",
		zap.String("parking", parkingID),
		zap.String("space", spaceID),
		zap.String("status", string(status)),
	)
	return nil
}

func (r *ParkingRepository) UpdateSpaceDotPosition(ctx context.Context, parkingID, spaceID string, p geometry.Point) error {
	p = p.Clamp()
	return r.updateSpace(ctx, parkingID, spaceID, func(sp *models.ParkingSpace) {
		sp.DotPosition = &p
	})
}

func (r *ParkingRepository) updateSpace(ctx context.Context, parkingID, spaceID string, change func(*models.ParkingSpace)) error {
	err := r.items.Mutate(ctx, func(list []models.ParkingConfig) ([]models.ParkingConfig, error) {
		for pi, p := range list {
			if p.ID != parkingID {
				continue
			}
			for si, sp := range p.Spaces {
				if sp.ID != spaceID {
					continue
				}
				spaces := append([]models.ParkingSpace(nil), p.Spaces...)
				change(&spaces[si])
				p.Spaces = spaces

				out := append([]models.ParkingConfig(nil), list...)
				out[pi] = p
				return out, nil
			}
			return nil, ErrNotFound
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("parking %s space %s: %w", parkingID, spaceID, err)
	}
	return nil
}
