package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/storage"
)

var errMigrateUnsupported = errors.New("migrate command only supports SQLite and PostgreSQL storage")

type MigrateCmd struct{}

// Run applies pending migrations without going through Load, which refuses
// a schema that is behind.
func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return errMigrateUnsupported
	}
	if ctx.Config.Kind() == config.StoreSQLite {
		if _, err := os.Stat(ctx.Store.GetConfigPath()); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage not initialized, run 'tally init' first")
		}
	}

	n, err := m.ApplyMigrations()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	ctx.MarkLoaded()

	switch n {
	case 0:
		ctx.Println("No migrations to apply. Database is up to date.")
	default:
		ctx.Printf("Successfully applied %d migration(s).\n", n)
	}
	return nil
}
