package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// #region store-struct
// Store holds patient records and the triage audit log.
type Store struct {
	db     *sql.DB
	driver string
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	return Open(DriverSQLite, dbPath)
}

// Open opens a database with the named driver ("sqlite" or "postgres") and
// runs migrations.
func Open(driver, dsn string) (*Store, error) {
	schema := sqliteSchema
	switch driver {
	case DriverSQLite:
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[STORE] opened %s database", driver)
	return &Store{db: db, driver: driver}, nil
}

// #endregion constructor

// #region accessors
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Rebind adapts a ?-placeholder query to the store's driver.
func (s *Store) Rebind(query string) string {
	return Rebind(s.driver, query)
}

// #endregion accessors
