package unitsvc

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"

	"github.com/foreseegroup/unitsvc/models"
)

type Endpoints struct {
	ListUnitsEndpoint  endpoint.Endpoint
	GetUnitEndpoint    endpoint.Endpoint
	CreateUnitEndpoint endpoint.Endpoint
	UpdateUnitEndpoint endpoint.Endpoint
	DeleteUnitEndpoint endpoint.Endpoint
}

func MakeServerEndpoints(s Service) Endpoints {
	return Endpoints{
		ListUnitsEndpoint:  MakeListUnitsEndpoint(s),
		GetUnitEndpoint:    MakeGetUnitEndpoint(s),
		CreateUnitEndpoint: MakeCreateUnitEndpoint(s),
		UpdateUnitEndpoint: MakeUpdateUnitEndpoint(s),
		DeleteUnitEndpoint: MakeDeleteUnitEndpoint(s),
	}
}

// MakeClientEndpoints returns Endpoints that call a remote unitsvc instance
// over HTTP. The returned Endpoints satisfy Service.
func MakeClientEndpoints(instance string, options ...httptransport.ClientOption) (Endpoints, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	tgt, err := url.Parse(instance)
	if err != nil {
		return Endpoints{}, err
	}
	tgt.Path = ""

	return Endpoints{
		ListUnitsEndpoint:  httptransport.NewClient("GET", tgt, EncodeListUnitsRequest, DecodeListUnitsResponse, options...).Endpoint(),
		GetUnitEndpoint:    httptransport.NewClient("GET", tgt, EncodeGetUnitRequest, DecodeGetUnitResponse, options...).Endpoint(),
		CreateUnitEndpoint: httptransport.NewClient("POST", tgt, EncodeCreateUnitRequest, DecodeCreateUnitResponse, options...).Endpoint(),
		UpdateUnitEndpoint: httptransport.NewClient("PUT", tgt, EncodeUpdateUnitRequest, DecodeUpdateUnitResponse, options...).Endpoint(),
		DeleteUnitEndpoint: httptransport.NewClient("DELETE", tgt, EncodeDeleteUnitRequest, DecodeDeleteUnitResponse, options...).Endpoint(),
	}, nil
}

func (e Endpoints) ListUnits(ctx context.Context) ([]models.Unit, error) {
	response, err := e.ListUnitsEndpoint(ctx, listUnitsRequest{})
	if err != nil {
		return nil, err
	}
	resp := response.(listUnitsResponse)
	return resp.Units, resp.Err
}

func (e Endpoints) GetUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	request := getUnitRequest{UnitID: unitID}
	response, err := e.GetUnitEndpoint(ctx, request)
	if err != nil {
		return nil, err
	}
	resp := response.(getUnitResponse)
	return resp.Unit, resp.Err
}

func (e Endpoints) CreateUnit(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	request := createUnitRequest{Unit: unit}
	response, err := e.CreateUnitEndpoint(ctx, request)
	if err != nil {
		return nil, err
	}
	resp := response.(createUnitResponse)
	return resp.Unit, resp.Err
}

func (e Endpoints) UpdateUnit(ctx context.Context, unitID string, unit *models.Unit) (*models.Unit, error) {
	request := updateUnitRequest{UnitID: unitID, Unit: unit}
	response, err := e.UpdateUnitEndpoint(ctx, request)
	if err != nil {
		return nil, err
	}
	resp := response.(updateUnitResponse)
	return resp.Unit, resp.Err
}

func (e Endpoints) DeleteUnit(ctx context.Context, unitID string) error {
	request := deleteUnitRequest{UnitID: unitID}
	response, err := e.DeleteUnitEndpoint(ctx, request)
	if err != nil {
		return err
	}
	resp := response.(deleteUnitResponse)
	return resp.Err
}

func MakeListUnitsEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		units, e := s.ListUnits(ctx)
		return listUnitsResponse{Units: units, Err: e}, nil
	}
}

type listUnitsRequest struct{}

type listUnitsResponse struct {
	Units []models.Unit
	Err   error
}

func (r listUnitsResponse) error() error { return r.Err }

// body is what goes on the wire: the bare array.
func (r listUnitsResponse) body() interface{} { return r.Units }

func MakeGetUnitEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(getUnitRequest)
		unit, e := s.GetUnit(ctx, req.UnitID)
		return getUnitResponse{Unit: unit, Err: e}, nil
	}
}

type getUnitRequest struct {
	UnitID string
}

type getUnitResponse struct {
	Unit *models.Unit
	Err  error
}

func (r getUnitResponse) error() error { return r.Err }

func (r getUnitResponse) body() interface{} { return r.Unit }

func MakeCreateUnitEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(createUnitRequest)
		unit, e := s.CreateUnit(ctx, req.Unit)
		return createUnitResponse{Unit: unit, Err: e}, nil
	}
}

type createUnitRequest struct {
	Unit *models.Unit
}

type createUnitResponse struct {
	Unit *models.Unit
	Err  error
}

func (r createUnitResponse) error() error { return r.Err }

func (r createUnitResponse) body() interface{} { return r.Unit }

func MakeUpdateUnitEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(updateUnitRequest)
		unit, e := s.UpdateUnit(ctx, req.UnitID, req.Unit)
		return updateUnitResponse{Unit: unit, Err: e}, nil
	}
}

type updateUnitRequest struct {
	UnitID string
	Unit   *models.Unit
}

type updateUnitResponse struct {
	Unit *models.Unit
	Err  error
}

func (r updateUnitResponse) error() error { return r.Err }

func (r updateUnitResponse) body() interface{} { return r.Unit }

func MakeDeleteUnitEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(deleteUnitRequest)
		e := s.DeleteUnit(ctx, req.UnitID)
		return deleteUnitResponse{Err: e}, nil
	}
}

type deleteUnitRequest struct {
	UnitID string
}

type deleteUnitResponse struct {
	Err error
}

func (r deleteUnitResponse) error() error { return r.Err }

func (r deleteUnitResponse) body() interface{} { return nil }

// StatusCode makes a successful delete answer 204 No Content.
func (r deleteUnitResponse) StatusCode() int { return http.StatusNoContent }
