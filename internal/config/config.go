// Package config resolves runtime settings from defaults, an optional YAML
// file and TALLY_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/utils"
)

// StoreKind identifies the storage backend selected by Config.Store.
type StoreKind string

const (
	StoreSQLite   StoreKind = "sqlite"
	StoreJSON     StoreKind = "json"
	StorePostgres StoreKind = "postgres"
)

type Backups struct {
	Max  int  `yaml:"max" split_words:"true"`
	Auto bool `yaml:"auto" split_words:"true"`
}

// Config field names map to environment variables via split_words, so
// RollingWindow is read from TALLY_ROLLING_WINDOW and Backups.Max from
// TALLY_BACKUPS_MAX. Explicit envconfig names are avoided because envconfig
// also consults them without the prefix.
type Config struct {
	// Store is a SQLite path, a .json file path or a PostgreSQL connection string.
	Store         string  `yaml:"store" split_words:"true"`
	Timezone      string  `yaml:"timezone" split_words:"true"`
	RollingWindow int     `yaml:"rolling_window" split_words:"true"`
	Debug         bool    `yaml:"debug" split_words:"true"`
	LogLevel      string  `yaml:"log_level" split_words:"true"`
	Backups       Backups `yaml:"backups" split_words:"true"`

	// DBConnection is only read from the environment so secrets stay out of files.
	DBConnection string `yaml:"-" split_words:"true"`
}

func Default() *Config {
	return &Config{
		Store:         constants.DefaultStorePath,
		Timezone:      constants.DefaultTimezone,
		RollingWindow: constants.DefaultRollingWindow,
		Backups: Backups{
			Max:  constants.MaxBackups,
			Auto: constants.DefaultAutoBackup,
		},
	}
}

// Load layers the YAML file at path (if it exists) and the environment over
// the defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandPath(path))
	switch {
	case err == nil:
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := envconfig.Process(constants.EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store) == "" {
		return fmt.Errorf("store must not be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.RollingWindow < 1 {
		return fmt.Errorf("rolling_window must be at least 1, got %d", c.RollingWindow)
	}
	if c.Backups.Max < 1 {
		return fmt.Errorf("backups.max must be at least 1, got %d", c.Backups.Max)
	}
	return nil
}

// Kind reports which backend Store refers to.
func (c *Config) Kind() StoreKind {
	return KindOf(c.Store)
}

func KindOf(store string) StoreKind {
	switch {
	case strings.HasPrefix(store, "postgres://"), strings.HasPrefix(store, "postgresql://"):
		return StorePostgres
	case strings.HasPrefix(store, "host=") || strings.Contains(store, " dbname="):
		return StorePostgres
	case strings.EqualFold(filepath.Ext(store), ".json"):
		return StoreJSON
	}
	return StoreSQLite
}

// StorePath returns Store with "~" expanded. It is only meaningful for file stores.
func (c *Config) StorePath() string {
	return ExpandPath(c.Store)
}

// ConfigDir returns the directory holding logs and backups: the store's
// directory for file stores, the default config directory otherwise.
func (c *Config) ConfigDir() string {
	if c.Kind() == StorePostgres {
		return ExpandPath(constants.DefaultConfigDir)
	}
	return filepath.Dir(c.StorePath())
}

// Save writes the file-backed settings to path as YAML.
func (c *Config) Save(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
