package unitsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"

	"github.com/foreseegroup/unitsvc/codes"
	"github.com/foreseegroup/unitsvc/models"
	"github.com/foreseegroup/unitsvc/svcerror"
)

var (
	ErrBadRequest = svcerror.New(codes.BadRequest, "request is malformed or invalid")
)

func MakeHTTPHandler(s Service, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	e := MakeServerEndpoints(s)
	options := []httptransport.ServerOption{
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerErrorEncoder(encodeError),
	}

	// GET /units and /units/ list every unit.
	list := httptransport.NewServer(
		e.ListUnitsEndpoint,
		DecodeListUnitsRequest,
		encodeResponse,
		options...,
	)
	r.Methods("GET").Path("/units").Handler(list)
	r.Methods("GET").Path("/units/").Handler(list)

	create := httptransport.NewServer(
		e.CreateUnitEndpoint,
		DecodeCreateUnitRequest,
		encodeResponse,
		options...,
	)
	r.Methods("POST").Path("/units").Handler(create)
	r.Methods("POST").Path("/units/").Handler(create)

	r.Methods("GET").Path("/units/{id}").Handler(httptransport.NewServer(
		e.GetUnitEndpoint,
		DecodeGetUnitRequest,
		encodeResponse,
		options...,
	))
	r.Methods("PUT").Path("/units/{id}").Handler(httptransport.NewServer(
		e.UpdateUnitEndpoint,
		DecodeUpdateUnitRequest,
		encodeResponse,
		options...,
	))
	r.Methods("DELETE").Path("/units/{id}").Handler(httptransport.NewServer(
		e.DeleteUnitEndpoint,
		DecodeDeleteUnitRequest,
		encodeResponse,
		options...,
	))

	r.Methods("GET").Path("/health").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `{"status":"ok"}`+"\n")
	})

	return r
}

func EncodeListUnitsRequest(ctx context.Context, req *http.Request, request interface{}) error {
	req.Method, req.URL.Path = "GET", "/units"
	return nil
}

func EncodeGetUnitRequest(ctx context.Context, req *http.Request, request interface{}) error {
	r := request.(getUnitRequest)
	req.Method, req.URL.Path = "GET", "/units/"+r.UnitID
	return nil
}

func EncodeCreateUnitRequest(ctx context.Context, req *http.Request, request interface{}) error {
	r := request.(createUnitRequest)
	req.Method, req.URL.Path = "POST", "/units"
	return encodeRequest(ctx, req, r.Unit)
}

func EncodeUpdateUnitRequest(ctx context.Context, req *http.Request, request interface{}) error {
	r := request.(updateUnitRequest)
	req.Method, req.URL.Path = "PUT", "/units/"+r.UnitID
	return encodeRequest(ctx, req, r.Unit)
}

func EncodeDeleteUnitRequest(ctx context.Context, req *http.Request, request interface{}) error {
	r := request.(deleteUnitRequest)
	req.Method, req.URL.Path = "DELETE", "/units/"+r.UnitID
	return nil
}

func DecodeListUnitsRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return listUnitsRequest{}, nil
}

func DecodeGetUnitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	return getUnitRequest{UnitID: vars["id"]}, nil
}

func DecodeCreateUnitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	unit, err := decodeUnit(r.Body)
	if err != nil {
		return nil, err
	}
	return createUnitRequest{Unit: unit}, nil
}

func DecodeUpdateUnitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	unit, err := decodeUnit(r.Body)
	if err != nil {
		return nil, err
	}
	return updateUnitRequest{UnitID: vars["id"], Unit: unit}, nil
}

func DecodeDeleteUnitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	return deleteUnitRequest{UnitID: vars["id"]}, nil
}

// decodeUnit rejects an absent or malformed body before the service sees it.
// The body must hold exactly one JSON value. A literal null decodes to a nil
// unit, which the service rejects in turn.
func decodeUnit(body io.Reader) (*models.Unit, error) {
	if body == nil {
		return nil, ErrInvalidUnit
	}
	dec := json.NewDecoder(body)
	var unit *models.Unit
	if err := dec.Decode(&unit); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrInvalidUnit
		}
		return nil, ErrBadRequest
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrBadRequest
	}
	return unit, nil
}

func DecodeListUnitsResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	if err := errorFromResponse(resp); err != nil {
		return listUnitsResponse{Err: err}, nil
	}
	var units []models.Unit
	err := json.NewDecoder(resp.Body).Decode(&units)
	return listUnitsResponse{Units: units}, err
}

func DecodeGetUnitResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	if err := errorFromResponse(resp); err != nil {
		return getUnitResponse{Err: err}, nil
	}
	var unit models.Unit
	err := json.NewDecoder(resp.Body).Decode(&unit)
	return getUnitResponse{Unit: &unit}, err
}

func DecodeCreateUnitResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	if err := errorFromResponse(resp); err != nil {
		return createUnitResponse{Err: err}, nil
	}
	var unit models.Unit
	err := json.NewDecoder(resp.Body).Decode(&unit)
	return createUnitResponse{Unit: &unit}, err
}

func DecodeUpdateUnitResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	if err := errorFromResponse(resp); err != nil {
		return updateUnitResponse{Err: err}, nil
	}
	var unit models.Unit
	err := json.NewDecoder(resp.Body).Decode(&unit)
	return updateUnitResponse{Unit: &unit}, err
}

func DecodeDeleteUnitResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	return deleteUnitResponse{Err: errorFromResponse(resp)}, nil
}

// errorFromResponse turns a non-2xx answer back into the service error that
// produced it. Bodiless 400s only come from update and delete of unknown units.
func errorFromResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	var body struct {
		Code  int    `json:"error_code"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode == http.StatusBadRequest {
			return ErrUnknownUnit
		}
		return svcerror.New(codes.Nil, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	switch body.Code {
	case codes.NotFound:
		return ErrNotFound
	case codes.BadRequest:
		return ErrBadRequest
	case codes.InvalidUnit:
		return ErrInvalidUnit
	case codes.UnknownUnit:
		return ErrUnknownUnit
	default:
		return svcerror.New(body.Code, body.Error)
	}
}

// errorer is implemented by all concrete response types that may contain
// errors. It allows us to change the HTTP response code without needing to
// trigger an endpoint (transport-level) error.
type errorer interface {
	error() error
}

// bodier is implemented by response types whose wire form differs from the
// response struct itself.
type bodier interface {
	body() interface{}
}

// encodeResponse is the common method to encode all response types to the
// client. Responses carrying a business-logic error are encoded as HTTP
// errors; a response may pick its own status through httptransport.StatusCoder.
func encodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	status := http.StatusOK
	if sc, ok := response.(httptransport.StatusCoder); ok {
		status = sc.StatusCode()
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return nil
	}
	body := response
	if b, ok := response.(bodier); ok {
		body = b.body()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// encodeRequest likewise JSON-encodes the request to the HTTP request body.
// Don't use it directly as a transport/http.Client EncodeRequestFunc:
// unitsvc endpoints require mutating the HTTP method and request path.
func encodeRequest(_ context.Context, req *http.Request, request interface{}) error {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(request)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.ContentLength = int64(buf.Len())
	req.Body = io.NopCloser(&buf)
	return nil
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	code := svcerror.StatusOf(err, codes.Nil)
	status := httpStatusFrom(code)
	switch code {
	case codes.NotFound, codes.UnknownUnit:
		// Absent units answer with a bare status.
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error_code": code,
		"error":      err.Error(),
	})
}

func httpStatusFrom(code int) int {
	switch code {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.BadRequest, codes.InvalidUnit, codes.UnknownUnit:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
