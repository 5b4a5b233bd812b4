package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Seed catalogue
// ============================================================

// Catalogue is a YAML file of ready-made entities.
type Catalogue struct {
	Buildings []BuildingDraft `yaml:"buildings"`
	Parkings  []ParkingDraft  `yaml:"parkings"`
}

type ImportResult struct {
	Created []string
	Skipped []string
}

func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return &c, nil
}

// Importer creates catalogue entries through the editors, so seeds obey the
// same validation as hand-made entities.
type Importer struct {
	buildings *BuildingEditor
	parkings  *ParkingEditor
	logger    *zap.Logger
}

func NewImporter(buildings *BuildingEditor, parkings *ParkingEditor, logger *zap.Logger) *Importer {
	return &Importer{buildings: buildings, parkings: parkings, logger: logger}
}

// Import creates every entry whose name is free. Entries whose name already
// exists are skipped; any other validation problem stops the import.
func (i *Importer) Import(ctx context.Context, c *Catalogue) (ImportResult, error) {
	var res ImportResult
	for _, d := range c.Buildings {
		d.ID = ""
		b, err := i.buildings.Save(ctx, d)
		if skipped(err) {
			i.logger.Warn("seed building skipped", zap.String("name", d.Name))
			res.Skipped = append(res.Skipped, d.Name)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("building %q: %w", d.Name, err)
		}
		res.Created = append(res.Created, b.ID)
	}
	for _, d := range c.Parkings {
		d.ID = ""
		p, err := i.parkings.Save(ctx, d)
		if skipped(err) {
			i.logger.Warn("seed parking skipped", zap.String("name", d.Name))
			res.Skipped = append(res.Skipped, d.Name)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("parking %q: %w", d.Name, err)
		}
		res.Created = append(res.Created, p.ID)
	}
	return res, nil
}

func skipped(err error) bool {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	return len(verr.Problems) == 1 && errors.Is(verr.Problems[0], ErrDuplicateName)
}
