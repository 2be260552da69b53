package postgres

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/migration"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/migrations"
)

// pingAttempts bounds connection retries when the server is still starting.
const pingAttempts = 4

const sslDisabledMsg = "SSL is not enabled on the server"

// Store keeps the kv table inside the tally schema of a PostgreSQL database.
type Store struct {
	connStr string
	db      *sql.DB
	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

func New(connStr string) *Store {
	return &Store{
		connStr:    withSearchPath(connStr),
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 250 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	return backoff.WithMaxRetries(exp, pingAttempts-1)
}

// connect opens a pool and pings it, keeping the pool only when the server answers.
func (s *Store) connect() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := s.ping(db); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

// ping retries transient failures. A server without SSL fails immediately.
func (s *Store) ping(db *sql.DB) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := db.Ping()
		switch {
		case err == nil:
			return nil
		case strings.Contains(err.Error(), sslDisabledMsg):
			return backoff.Permanent(err)
		}
		logger.Debug("Postgres ping failed", "attempt", attempt, "error", err)
		return err
	}, s.newBackOff())
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), sslDisabledMsg) && !hasSSLMode(s.connStr) {
		return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
	}
	return fmt.Errorf("failed to connect to database: %w", err)
}

func (s *Store) Init() error {
	if err := s.connect(); err != nil {
		return err
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.connect(); err != nil {
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

func (s *Store) MigrationRunner() (*migration.Runner, error) {
	files, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, files, migration.DriverPostgres), nil
}

// ApplyMigrations connects if needed and brings the schema up to date.
func (s *Store) ApplyMigrations() (int, error) {
	if err := s.connect(); err != nil {
		return 0, err
	}
	runner, err := s.MigrationRunner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "store", "postgresql")
	})
}

// GetConfigPath names the backend without exposing the connection string.
func (s *Store) GetConfigPath() string { return "postgresql" }

var _ storage.Provider = (*Store)(nil)
