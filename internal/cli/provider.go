package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/postgres"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

// NewProvider returns the storage backend selected by cfg.Store.
//
// A PostgreSQL store string must not embed a password. When TALLY_DB_CONNECTION
// or the OS keyring holds a full connection string, that string is used instead.
func NewProvider(cfg *config.Config) (storage.Provider, error) {
	if cfg.Kind() != config.StorePostgres {
		return OpenStore(cfg.Store)
	}

	if err := checkConnString(cfg.Store); err != nil {
		return nil, err
	}
	connStr := cfg.Store
	resolved, source, err := keyring.ResolveConnectionString("", cfg.DBConnection)
	switch {
	case err != nil:
		logger.Warn("Keyring unavailable, using configured connection string", "error", err)
	case resolved != "":
		logger.Debug("Using stored connection string", "source", source)
		connStr = resolved
	}
	return postgres.New(connStr), nil
}

// OpenStore returns a provider for a store path or password-free PostgreSQL
// connection string without consulting the environment or keyring.
func OpenStore(store string) (storage.Provider, error) {
	switch config.KindOf(store) {
	case config.StorePostgres:
		if err := checkConnString(store); err != nil {
			return nil, err
		}
		return postgres.New(store), nil
	case config.StoreJSON:
		return storage.NewJSONStore(config.ExpandPath(store)), nil
	}
	return sqlite.NewStore(config.ExpandPath(store)), nil
}

func checkConnString(connStr string) error {
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("%w; store the full string with 'tally keyring set' or TALLY_DB_CONNECTION instead", err)
		}
		return err
	}
	return nil
}
