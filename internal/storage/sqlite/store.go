package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/migration"
	"github.com/julianstephens/tally/migrations"
)

// Store is a SQLite-backed key/value provider. The database file holds a
// single kv table plus the schema_version bookkeeping table.
type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// dsn waits on a locked database instead of failing immediately; the dashboard
// and a CLI command may touch the file at the same time.
func (s *Store) dsn() string {
	return s.path + "?_pragma=busy_timeout(5000)"
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", s.path, err)
	}
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	if _, err := s.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and refuses schemas that are newer than
// the embedded migrations or still have pending ones.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage not initialized, run 'tally init' first")
	}
	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.MigrationRunner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// tableExists matches case-insensitively, as SQLite does for identifiers.
func (s *Store) tableExists(name string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE",
		name,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) MigrationRunner() (*migration.Runner, error) {
	files, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, files, migration.DriverSQLite), nil
}

// ApplyMigrations opens the database if needed, brings the schema up to date
// and reports how many migrations ran.
func (s *Store) ApplyMigrations() (int, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	runner, err := s.MigrationRunner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "store", s.path)
	})
}

func (s *Store) GetConfigPath() string { return s.path }

// GetDB is nil until Init or Load.
func (s *Store) GetDB() *sql.DB { return s.db }
