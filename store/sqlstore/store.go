// Package sqlstore implements the unit repository on top of database/sql.
// Postgres (lib/pq) and SQLite (go-sqlite3) are supported; the schema is
// applied from embedded migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/foreseegroup/unitsvc/models"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// PingAttempts is how many times Open pings the database, one second apart,
// before giving up.
var PingAttempts = 30

var ErrUnsupportedDriver = errors.New("unsupported database driver")

type queries struct {
	findAll string
	findOne string
	insert  string
	upsert  string
	delete  string
	count   string
}

func queriesFor(driver string) (queries, error) {
	var p func(int) string
	switch driver {
	case DriverPostgres:
		p = func(n int) string { return "$" + strconv.Itoa(n) }
	case DriverSQLite:
		p = func(int) string { return "?" }
	default:
		return queries{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return queries{
		findAll: "SELECT id, name FROM units",
		findOne: "SELECT id, name FROM units WHERE id = " + p(1),
		insert:  "INSERT INTO units (id, name) VALUES (" + p(1) + ", " + p(2) + ")",
		upsert: "INSERT INTO units (id, name) VALUES (" + p(1) + ", " + p(2) + ") " +
			"ON CONFLICT (id) DO UPDATE SET name = excluded.name",
		delete: "DELETE FROM units WHERE id = " + p(1),
		count:  "SELECT COUNT(*) FROM units",
	}, nil
}

// Store is a SQL-backed unit repository.
type Store struct {
	db     *sql.DB
	driver string
	q      queries
}

// New wraps an open database. It does not apply migrations.
func New(db *sql.DB, driver string) (*Store, error) {
	q, err := queriesFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, driver: driver, q: q}, nil
}

// Open connects to the database, waits for it to answer and migrates the
// schema up.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if _, err := queriesFor(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := New(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies pending migrations and returns how many ran.
func (s *Store) Migrate() (int, error) {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations/" + s.driver,
	}
	n, err := migrate.Exec(s.db, s.driver, source, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("migrate: %w", err)
	}
	return n, nil
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) FindAll(ctx context.Context) ([]models.Unit, error) {
	rows, err := s.db.QueryContext(ctx, s.q.findAll)
	if err != nil {
		return nil, fmt.Errorf("select units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	units := []models.Unit{}
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select units: %w", err)
	}
	return units, nil
}

func (s *Store) FindOne(ctx context.Context, id string) (*models.Unit, error) {
	var u models.Unit
	err := s.db.QueryRowContext(ctx, s.q.findOne, id).Scan(&u.ID, &u.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, models.ErrUnitNotFound
	case err != nil:
		return nil, fmt.Errorf("select unit %s: %w", id, err)
	}
	return &u, nil
}

func (s *Store) Save(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	saved := *unit
	query := s.q.upsert
	if saved.IsNew() {
		saved.ID = models.NewID()
		query = s.q.insert
	}
	if _, err := s.db.ExecContext(ctx, query, saved.ID, saved.Name); err != nil {
		return nil, fmt.Errorf("save unit %s: %w", saved.ID, err)
	}
	return &saved, nil
}

func (s *Store) Delete(ctx context.Context, unit *models.Unit) error {
	if _, err := s.db.ExecContext(ctx, s.q.delete, unit.ID); err != nil {
		return fmt.Errorf("delete unit %s: %w", unit.ID, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.q.count).Scan(&n); err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return n, nil
}

func ping(ctx context.Context, db *sql.DB) (err error) {
	for i := 1; ; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i >= PingAttempts {
			return fmt.Errorf("database unresponsive: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
