package unitsvc

import (
	"context"
	"errors"

	"github.com/foreseegroup/unitsvc/models"
)

// New returns a Service backed by repo.
func New(repo Repository) Service {
	return &storeService{repo}
}

type storeService struct {
	repo Repository
}

func (s *storeService) ListUnits(ctx context.Context) ([]models.Unit, error) {
	units, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if units == nil {
		units = []models.Unit{}
	}
	return units, nil
}

func (s *storeService) GetUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	unit, err := s.find(ctx, unitID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnitNotFound):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	return unit, nil
}

func (s *storeService) CreateUnit(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	if unit == nil || unit.Validate() != nil {
		return nil, ErrInvalidUnit
	}
	return s.repo.Save(ctx, &models.Unit{Name: unit.Name})
}

func (s *storeService) UpdateUnit(ctx context.Context, unitID string, unit *models.Unit) (*models.Unit, error) {
	if unit == nil || unit.Validate() != nil {
		return nil, ErrInvalidUnit
	}
	existing, err := s.find(ctx, unitID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnitNotFound):
			return nil, ErrUnknownUnit
		default:
			return nil, err
		}
	}
	existing.Name = unit.Name
	return s.repo.Save(ctx, existing)
}

func (s *storeService) DeleteUnit(ctx context.Context, unitID string) error {
	unit, err := s.find(ctx, unitID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnitNotFound):
			return ErrUnknownUnit
		default:
			return err
		}
	}
	return s.repo.Delete(ctx, unit)
}

// find treats an empty id as absent so stores never see it.
func (s *storeService) find(ctx context.Context, unitID string) (*models.Unit, error) {
	if unitID == "" {
		return nil, models.ErrUnitNotFound
	}
	return s.repo.FindOne(ctx, unitID)
}
