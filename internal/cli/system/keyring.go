package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/storage/postgres"
)

// KeyringSetCmd stores the full PostgreSQL connection string, password
// included, so the configured store can stay password-free.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if config.KindOf(cmd.ConnectionString) != config.StorePostgres {
		return errors.New("connection string must be a PostgreSQL URL or key=value DSN")
	}
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println(cli.Success("Connection string stored in OS keyring: " + keyring.Mask(cmd.ConnectionString)))
	if ctx.Config != nil && ctx.Config.Kind() != config.StorePostgres {
		ctx.Println(cli.Muted("The configured store is not PostgreSQL; set store to a password-free postgres URL to use it."))
	}
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'tally keyring set' to store one")
		}
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	ctx.Println(keyring.Mask(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println(cli.Success("Connection string deleted from OS keyring"))
	return nil
}

// KeyringStatusCmd reports keyring availability and which connection string
// the postgres store would use.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println(cli.Danger("OS keyring is not available on this system"))
		return errors.New("keyring unavailable")
	}
	ctx.Println(cli.Success("OS keyring is available"))

	env := ""
	if ctx.Config != nil {
		env = ctx.Config.DBConnection
	}
	connStr, source, err := keyring.ResolveConnectionString("", env)
	switch {
	case err != nil:
		return fmt.Errorf("failed to read keyring: %w", err)
	case connStr == "":
		ctx.Println("No connection string stored; the configured store string is used as-is.")
	default:
		ctx.Printf("Connection string from %s: %s\n", source, keyring.Mask(connStr))
	}
	return nil
}
