package storage

import (
	"errors"

	"github.com/julianstephens/tally/internal/migration"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Provider is a durable key/value store for serialized state snapshots.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Values
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// Keys returns every stored key starting with prefix, in ascending order.
	Keys(prefix string) ([]string, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by SQL-backed providers.
type Migrator interface {
	MigrationRunner() (*migration.Runner, error)
	ApplyMigrations() (int, error)
}
