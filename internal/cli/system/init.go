package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	kind := ctx.Config.Kind()
	dbPath := ctx.Store.GetConfigPath()

	if c.Force && kind != config.StorePostgres {
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(config.ExpandPath(c.Source))
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Database exists, close it first to prevent file locking issues
			if err := ctx.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	// The JSON store refuses to initialize over an existing file
	if kind == config.StoreJSON {
		if _, err := os.Stat(dbPath); err == nil {
			ctx.Printf("Storage already initialized at: %s\n", dbPath)
			return c.copyIfRequested(ctx)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.MarkLoaded()
	ctx.Printf("Initialized tally storage at: %s\n", ctx.Store.GetConfigPath())

	return c.copyIfRequested(ctx)
}

func (c *InitCmd) copyIfRequested(ctx *cli.Context) error {
	if c.Source == "" {
		return nil
	}
	ctx.Printf("Copying data from: %s\n", c.Source)
	if err := ctx.Load(); err != nil {
		return err
	}
	n, err := copyData(ctx.Store, c.Source)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	ctx.Printf("Copied %d key(s).\n", n)
	return nil
}

// copyData copies every key from the store at sourcePath into dst, including
// preserved corrupt snapshots.
func copyData(dst storage.Provider, sourcePath string) (int, error) {
	src, err := cli.OpenStore(sourcePath)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	keys, err := src.Keys("")
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}
	for _, key := range keys {
		value, err := src.Get(key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s from source: %w", key, err)
		}
		if err := dst.Put(key, value); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", key, err)
		}
	}
	return len(keys), nil
}
