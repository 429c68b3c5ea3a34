package unitsvc

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/foreseegroup/unitsvc/models"
)

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger log.Logger
}

func (mw loggingMiddleware) ListUnits(ctx context.Context) (units []models.Unit, err error) {
	defer func(begin time.Time) {
		mw.log(err,
			"action", "ListUnits",
			"size", len(units),
			"duration", time.Since(begin),
			"error", err,
		)
	}(time.Now())
	return mw.next.ListUnits(ctx)
}

func (mw loggingMiddleware) GetUnit(ctx context.Context, unitID string) (unit *models.Unit, err error) {
	defer func(begin time.Time) {
		mw.log(err,
			"action", "GetUnit",
			"unit", unitID,
			"duration", time.Since(begin),
			"error", err,
		)
	}(time.Now())
	return mw.next.GetUnit(ctx, unitID)
}

func (mw loggingMiddleware) CreateUnit(ctx context.Context, in *models.Unit) (unit *models.Unit, err error) {
	defer func(begin time.Time) {
		mw.log(err,
			"action", "CreateUnit",
			"unit", idOf(unit),
			"name", nameOf(in),
			"duration", time.Since(begin),
			"error", err,
		)
	}(time.Now())
	return mw.next.CreateUnit(ctx, in)
}

func (mw loggingMiddleware) UpdateUnit(ctx context.Context, unitID string, in *models.Unit) (unit *models.Unit, err error) {
	defer func(begin time.Time) {
		mw.log(err,
			"action", "UpdateUnit",
			"unit", unitID,
			"name", nameOf(in),
			"duration", time.Since(begin),
			"error", err,
		)
	}(time.Now())
	return mw.next.UpdateUnit(ctx, unitID, in)
}

func (mw loggingMiddleware) DeleteUnit(ctx context.Context, unitID string) (err error) {
	defer func(begin time.Time) {
		mw.log(err,
			"action", "DeleteUnit",
			"unit", unitID,
			"duration", time.Since(begin),
			"error", err,
		)
	}(time.Now())
	return mw.next.DeleteUnit(ctx, unitID)
}

// log reports failed calls at warn level and everything else at info.
func (mw loggingMiddleware) log(err error, keyvals ...interface{}) {
	if err != nil {
		_ = level.Warn(mw.logger).Log(keyvals...)
		return
	}
	_ = level.Info(mw.logger).Log(keyvals...)
}

func idOf(u *models.Unit) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func nameOf(u *models.Unit) string {
	if u == nil {
		return ""
	}
	return u.Name
}
