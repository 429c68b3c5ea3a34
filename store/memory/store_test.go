package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foreseegroup/unitsvc/models"
)

func TestSaveAssignsID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	in := &models.Unit{Name: "testUnit1"}
	saved, err := s.Save(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "testUnit1", saved.Name)
	assert.Empty(t, in.ID, "input must not be mutated")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveOverwritesExisting(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	saved, err := s.Save(ctx, &models.Unit{Name: "before"})
	require.NoError(t, err)

	saved.Name = "after"
	updated, err := s.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	found, err := s.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", found.Name)

	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestFindOneMissing(t *testing.T) {
	s := NewStore()
	_, err := s.FindOne(context.Background(), "nonExistingId")
	assert.Equal(t, models.ErrUnitNotFound, err)
}

func TestFindOneReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	saved, _ := s.Save(ctx, &models.Unit{Name: "original"})

	found, _ := s.FindOne(ctx, saved.ID)
	found.Name = "changed"

	again, _ := s.FindOne(ctx, saved.ID)
	assert.Equal(t, "original", again.Name)
}

func TestFindAllPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	units, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)

	a, _ := s.Save(ctx, &models.Unit{Name: "testUnit1"})
	b, _ := s.Save(ctx, &models.Unit{Name: "testUnit2"})

	units, err = s.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Unit{*a, *b}, units)
}

func TestDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, _ := s.Save(ctx, &models.Unit{Name: "testUnit1"})
	b, _ := s.Save(ctx, &models.Unit{Name: "testUnit2"})

	require.NoError(t, s.Delete(ctx, a))
	_, err := s.FindOne(ctx, a.ID)
	assert.Equal(t, models.ErrUnitNotFound, err)

	units, _ := s.FindAll(ctx)
	assert.Equal(t, []models.Unit{*b}, units)

	assert.NoError(t, s.Delete(ctx, a))
}

func TestReset(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _ = s.Save(ctx, &models.Unit{Name: "testUnit1"})
	s.Reset()
	n, _ := s.Count(ctx)
	assert.Zero(t, n)
}

func TestConcurrentSaves(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Save(ctx, &models.Unit{Name: "unit"})
		}()
	}
	wg.Wait()

	n, _ := s.Count(ctx)
	assert.Equal(t, 50, n)
}
