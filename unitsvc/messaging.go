package unitsvc

import (
	"context"
	"encoding/json"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/foreseegroup/unitsvc/models"
)

const (
	SubjCreateUnit = "units.created"
	SubjUpdateUnit = "units.updated"
	SubjDeleteUnit = "units.deleted"
)

// Publisher is the part of *nats.Conn the messaging middleware needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// MessagingMiddleware publishes every successful mutation as the JSON of the
// affected unit. Failed publishes are logged and never fail the request.
func MessagingMiddleware(p Publisher, logger log.Logger) Middleware {
	return func(next Service) Service {
		return messagingMiddleware{p, logger, next}
	}
}

type messagingMiddleware struct {
	p      Publisher
	logger log.Logger
	next   Service
}

func (mm messagingMiddleware) ListUnits(ctx context.Context) ([]models.Unit, error) {
	return mm.next.ListUnits(ctx)
}

func (mm messagingMiddleware) GetUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	return mm.next.GetUnit(ctx, unitID)
}

func (mm messagingMiddleware) CreateUnit(ctx context.Context, in *models.Unit) (unit *models.Unit, err error) {
	defer func() {
		if err == nil {
			mm.publish(SubjCreateUnit, unit)
		}
	}()
	return mm.next.CreateUnit(ctx, in)
}

func (mm messagingMiddleware) UpdateUnit(ctx context.Context, unitID string, in *models.Unit) (unit *models.Unit, err error) {
	defer func() {
		if err == nil {
			mm.publish(SubjUpdateUnit, unit)
		}
	}()
	return mm.next.UpdateUnit(ctx, unitID, in)
}

func (mm messagingMiddleware) DeleteUnit(ctx context.Context, unitID string) (err error) {
	defer func() {
		if err == nil {
			mm.publish(SubjDeleteUnit, &models.Unit{ID: unitID})
		}
	}()
	return mm.next.DeleteUnit(ctx, unitID)
}

func (mm messagingMiddleware) publish(subj string, unit *models.Unit) {
	data, err := json.Marshal(unit)
	if err != nil {
		_ = level.Warn(mm.logger).Log("msg", "could not encode unit event", "subject", subj, "err", err)
		return
	}
	if err := mm.p.Publish(subj, data); err != nil {
		_ = level.Warn(mm.logger).Log("msg", "could not publish unit event", "subject", subj, "unit", unit.ID, "err", err)
	}
}
