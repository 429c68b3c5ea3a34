package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foreseegroup/unitsvc/models"
)

func setupTestDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(db, DriverPostgres)
	require.NoError(t, err)
	return s, mock
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(nil, "mysql")
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))

	_, err = Open(context.Background(), "mysql", "")
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}

func TestFindAll(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM units")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow("1", "testUnit1").
			AddRow("2", "testUnit2"),
	)

	units, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Unit{{ID: "1", Name: "testUnit1"}, {ID: "2", Name: "testUnit2"}}, units)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllEmpty(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM units")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	units, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
}

func TestFindOne(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM units WHERE id = $1")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("abc", "testUnit1"))

	unit, err := s.FindOne(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, &models.Unit{ID: "abc", Name: "testUnit1"}, unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneMissing(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM units WHERE id = $1")).
		WithArgs("nonExistingId").
		WillReturnError(sql.ErrNoRows)

	_, err := s.FindOne(context.Background(), "nonExistingId")
	assert.Equal(t, models.ErrUnitNotFound, err)
}

func TestFindOneDriverError(t *testing.T) {
	s, mock := setupTestDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM units WHERE id = $1")).
		WithArgs("abc").
		WillReturnError(boom)

	_, err := s.FindOne(context.Background(), "abc")
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, models.ErrUnitNotFound))
}

func TestSaveInsertsNewUnit(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO units (id, name) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "testUnit1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := s.Save(context.Background(), &models.Unit{Name: "testUnit1"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "testUnit1", saved.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUpsertsExistingUnit(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO units (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = excluded.name")).
		WithArgs("abc", "renamed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := s.Save(context.Background(), &models.Unit{ID: "abc", Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, &models.Unit{ID: "abc", Name: "renamed"}, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM units WHERE id = $1")).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), &models.Unit{ID: "abc"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	s, mock := setupTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM units")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLitePlaceholders(t *testing.T) {
	q, err := queriesFor(DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM units WHERE id = ?", q.findOne)
	assert.Equal(t, "INSERT INTO units (id, name) VALUES (?, ?)", q.insert)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "units.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	n, err := s.Migrate()
	require.NoError(t, err)
	assert.Zero(t, n, "schema is already current after Open")

	created, err := s.Save(ctx, &models.Unit{Name: "testUnit1"})
	require.NoError(t, err)

	created.Name = "testUnitEdited"
	_, err = s.Save(ctx, created)
	require.NoError(t, err)

	found, err := s.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testUnitEdited", found.Name)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Delete(ctx, created))
	_, err = s.FindOne(ctx, created.ID)
	assert.Equal(t, models.ErrUnitNotFound, err)
}
