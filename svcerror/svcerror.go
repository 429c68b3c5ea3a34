// Package svcerror provides errors that carry a service status code from
// package codes, so transports can map business failures onto their own
// status vocabulary.
//
// Every Error also carries the matching juju/errors kind, so callers can test
// for errors.NotFound, errors.NotValid or errors.BadRequest without knowing
// the numeric code.
package svcerror

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/foreseegroup/unitsvc/codes"
)

// Error is an error with a service status code attached.
type Error interface {
	error
	Status() int
}

type svcError struct {
	code int
	msg  string
	err  error
}

// New returns an Error with the given code and message.
func New(code int, msg string) Error {
	return &svcError{code: code, msg: msg, err: withKind(code, nil, msg)}
}

// Wrap attaches a code to err. Wrapping an Error replaces its code.
func Wrap(code int, err error) Error {
	if err == nil {
		return nil
	}
	return &svcError{code: code, msg: err.Error(), err: withKind(code, err, "")}
}

func withKind(code int, cause error, msg string) error {
	switch code {
	case codes.NotFound, codes.UnknownUnit:
		return errors.NewNotFound(cause, msg)
	case codes.InvalidUnit:
		return errors.NewNotValid(cause, msg)
	case codes.BadRequest:
		return errors.NewBadRequest(cause, msg)
	}
	if cause != nil {
		return cause
	}
	return errors.New(msg)
}

func (e *svcError) Error() string { return e.msg }

func (e *svcError) Status() int { return e.code }

func (e *svcError) Unwrap() error { return e.err }

func (e *svcError) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "[%d] %s", e.code, e.msg)
		return
	}
	fmt.Fprint(f, e.msg)
}

// StatusOf returns the code carried by err. Errors without a code are
// classified by their juju/errors kind, and def is returned when neither
// applies.
func StatusOf(err error, def int) int {
	if e, ok := err.(Error); ok {
		return e.Status()
	}
	switch {
	case err == nil:
		return def
	case errors.Is(err, errors.NotFound):
		return codes.NotFound
	case errors.Is(err, errors.NotValid):
		return codes.InvalidUnit
	case errors.Is(err, errors.BadRequest):
		return codes.BadRequest
	}
	return def
}
