// Package models contains the records exchanged and persisted by unitsvc.
package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

var (
	// ErrUnitNotFound is returned by stores when no unit has the requested id.
	ErrUnitNotFound = errors.NewNotFound(nil, "unit not found")
	// ErrEmptyName is returned by Validate for a unit without a name. The
	// service reports it to clients as unitsvc.ErrInvalidUnit.
	ErrEmptyName = errors.NewNotValid(nil, "unit name must not be empty")
)

// Unit represents a single managed unit. ID is assigned by the store on
// first save and never changes afterwards.
type Unit struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Validate checks the fields a client is required to supply.
func (u *Unit) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsNew reports whether the unit has not been persisted yet.
func (u *Unit) IsNew() bool {
	return u.ID == ""
}

// NewID returns a fresh unit identifier.
func NewID() string {
	return uuid.New().String()
}
