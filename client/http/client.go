// Package http provides a unitsvc.Service that talks to a remote instance.
package http

import (
	"context"
	"net/url"
	"strings"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"

	"github.com/foreseegroup/unitsvc/unitsvc"
)

// New returns a Service for the instance at the given host:port or URL.
// Transport failures are logged as well as returned.
func New(instance string, logger log.Logger) (unitsvc.Service, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	if _, err := url.Parse(instance); err != nil {
		return nil, err
	}

	e, err := unitsvc.MakeClientEndpoints(instance,
		httptransport.ClientFinalizer(func(_ context.Context, err error) {
			if err != nil {
				_ = logger.Log("transport", "HTTP", "instance", instance, "error", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}
