package unitsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/foreseegroup/unitsvc/models"
)

func InstrumentingMiddleware(
	requestCount metrics.Counter,
	requestLatency metrics.Histogram,
) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{requestCount, requestLatency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (im instrumentingMiddleware) observe(method string, err error, begin time.Time) {
	lvs := []string{"method", method, "error", fmt.Sprint(err != nil)}
	im.requestCount.With(lvs...).Add(1)
	im.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
}

func (im instrumentingMiddleware) ListUnits(ctx context.Context) (units []models.Unit, err error) {
	defer func(begin time.Time) { im.observe("ListUnits", err, begin) }(time.Now())
	return im.next.ListUnits(ctx)
}

func (im instrumentingMiddleware) GetUnit(ctx context.Context, unitID string) (unit *models.Unit, err error) {
	defer func(begin time.Time) { im.observe("GetUnit", err, begin) }(time.Now())
	return im.next.GetUnit(ctx, unitID)
}

func (im instrumentingMiddleware) CreateUnit(ctx context.Context, in *models.Unit) (unit *models.Unit, err error) {
	defer func(begin time.Time) { im.observe("CreateUnit", err, begin) }(time.Now())
	return im.next.CreateUnit(ctx, in)
}

func (im instrumentingMiddleware) UpdateUnit(ctx context.Context, unitID string, in *models.Unit) (unit *models.Unit, err error) {
	defer func(begin time.Time) { im.observe("UpdateUnit", err, begin) }(time.Now())
	return im.next.UpdateUnit(ctx, unitID, in)
}

func (im instrumentingMiddleware) DeleteUnit(ctx context.Context, unitID string) (err error) {
	defer func(begin time.Time) { im.observe("DeleteUnit", err, begin) }(time.Now())
	return im.next.DeleteUnit(ctx, unitID)
}

// RegisterUnitGauge exposes the number of stored units as
// unitsvc_units_stored. A failing count is reported as -1.
func RegisterUnitGauge(reg prometheus.Registerer, repo Repository) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "unitsvc",
		Name:      "units_stored",
		Help:      "Number of units held by the repository.",
	}, func() float64 {
		n, err := repo.Count(context.Background())
		if err != nil {
			return -1
		}
		return float64(n)
	}))
}
