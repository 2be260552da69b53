// Package clitest builds command contexts over throwaway stores for tests.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

// Clock returns a fixed clock at 09:30 UTC on date.
func Clock(t *testing.T, date string) func() time.Time {
	t.Helper()
	now, err := time.ParseInLocation("2006-01-02 15:04", date+" 09:30", time.UTC)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return func() time.Time { return now }
}

// NewContext returns an initialized context whose output is captured in the
// returned buffer. File names ending in .json select the JSON store, anything
// else SQLite.
func NewContext(t *testing.T, today, fileName string) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Store = filepath.Join(t.TempDir(), fileName)
	cfg.Timezone = "UTC"

	var store storage.Provider
	if cfg.Kind() == config.StoreJSON {
		store = storage.NewJSONStore(cfg.Store)
	} else {
		store = sqlite.NewStore(cfg.Store)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config: cfg,
		Store:  store,
		Out:    out,
		Now:    Clock(t, today),
	}
	ctx.MarkLoaded()
	return ctx, out
}
