package unitsvc

import (
	"context"

	"github.com/foreseegroup/unitsvc/codes"
	"github.com/foreseegroup/unitsvc/models"
	"github.com/foreseegroup/unitsvc/svcerror"
)

var (
	ErrNotFound    = svcerror.New(codes.NotFound, "the requested unit could not be found")
	ErrInvalidUnit = svcerror.New(codes.InvalidUnit, "unit payload is missing or invalid")
	ErrUnknownUnit = svcerror.New(codes.UnknownUnit, "no unit exists with the given id")
)

type Middleware func(Service) Service

// Service manages units.
type Service interface {
	// ListUnits returns every stored unit, in no particular order.
	ListUnits(ctx context.Context) ([]models.Unit, error)
	// GetUnit returns the unit with the given id, or ErrNotFound.
	GetUnit(ctx context.Context, unitID string) (*models.Unit, error)
	// CreateUnit persists a new unit and returns it with its assigned id.
	// Any id carried by the payload is ignored.
	CreateUnit(ctx context.Context, unit *models.Unit) (*models.Unit, error)
	// UpdateUnit replaces the name of an existing unit. Updating a unit that
	// does not exist fails with ErrUnknownUnit rather than ErrNotFound.
	UpdateUnit(ctx context.Context, unitID string, unit *models.Unit) (*models.Unit, error)
	// DeleteUnit removes an existing unit, or fails with ErrUnknownUnit.
	DeleteUnit(ctx context.Context, unitID string) error
}

// Repository is the persistence contract the service is built on.
type Repository interface {
	// FindAll never fails because nothing is stored; it returns an empty slice.
	FindAll(ctx context.Context) ([]models.Unit, error)
	// FindOne returns models.ErrUnitNotFound when no unit has the id.
	FindOne(ctx context.Context, id string) (*models.Unit, error)
	// Save inserts the unit under a new id when its ID is empty and
	// overwrites the stored record otherwise.
	Save(ctx context.Context, unit *models.Unit) (*models.Unit, error)
	Delete(ctx context.Context, unit *models.Unit) error
	Count(ctx context.Context) (int, error)
}
