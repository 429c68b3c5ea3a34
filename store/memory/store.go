// Package memory implements the unit repository in process memory. It is the
// default backend and the one used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/foreseegroup/unitsvc/models"
)

// Store keeps units in a map keyed by id. Records are copied on the way in
// and out, so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	units map[string]models.Unit
	order []string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{units: make(map[string]models.Unit)}
}

// FindAll returns units in insertion order.
func (s *Store) FindAll(_ context.Context) ([]models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	units := make([]models.Unit, 0, len(s.units))
	for _, id := range s.order {
		units = append(units, s.units[id])
	}
	return units, nil
}

func (s *Store) FindOne(_ context.Context, id string) (*models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.units[id]
	if !ok {
		return nil, models.ErrUnitNotFound
	}
	return &unit, nil
}

func (s *Store) Save(_ context.Context, unit *models.Unit) (*models.Unit, error) {
	saved := *unit
	s.mu.Lock()
	defer s.mu.Unlock()
	if saved.IsNew() {
		saved.ID = models.NewID()
	}
	if _, ok := s.units[saved.ID]; !ok {
		s.order = append(s.order, saved.ID)
	}
	s.units[saved.ID] = saved
	return &saved, nil
}

// Delete removes the unit. Deleting an absent unit is a no-op.
func (s *Store) Delete(_ context.Context, unit *models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[unit.ID]; !ok {
		return nil
	}
	delete(s.units, unit.ID)
	for i, id := range s.order {
		if id == unit.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units), nil
}

// Reset drops every stored unit.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = make(map[string]models.Unit)
	s.order = nil
}
