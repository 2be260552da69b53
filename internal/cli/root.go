package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/backup"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/state"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/tracker"
	"github.com/julianstephens/tally/internal/utils"
)

type Context struct {
	Config *config.Config
	// ConfigPath is the YAML file Config was loaded from.
	ConfigPath string
	Store      storage.Provider

	// Out and In default to the process's stdout and stdin.
	Out io.Writer
	In  io.Reader
	// Now defaults to time.Now.
	Now func() time.Time

	loaded  bool
	service *tracker.Service
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Load opens the configured store once.
func (c *Context) Load() error {
	if c.loaded {
		return nil
	}
	if err := c.Store.Load(); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// MarkLoaded records that the store was opened elsewhere, e.g. by Init.
func (c *Context) MarkLoaded() { c.loaded = true }

// Close releases the store and drops the cached service.
func (c *Context) Close() error {
	c.loaded = false
	c.service = nil
	return c.Store.Close()
}

func (c *Context) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Config.Timezone)
}

// CurrentTime reads the context clock.
func (c *Context) CurrentTime() time.Time {
	return c.clock()()
}

func (c *Context) clock() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

// Service opens the store, loads the tracked state and returns the tracker
// over it. The first call also performs the automatic daily backup.
func (c *Context) Service() (*tracker.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	if err := c.Load(); err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	now := c.clock()
	st, recovery, err := state.Load(c.Store, utils.DateOf(now().In(loc)))
	if err != nil {
		return nil, err
	}
	switch recovery {
	case state.RecoveryCorrupt, state.RecoveryMissingTrackingStart:
		c.Println(Warning(fmt.Sprintf("Stored state was unreadable (%s); started fresh. The old copy was kept in the store.", recovery)))
	}

	c.PerformAutomaticBackup()
	c.service = tracker.New(st, loc, tracker.WithClock(now))
	return c.service, nil
}

// BackupManager returns a backup manager for the local store file.
func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Store.GetConfigPath(),
		backup.WithMaxBackups(c.Config.Backups.Max),
		backup.WithClock(c.clock()),
	)
}

// PerformAutomaticBackup creates the day's backup of a SQLite store when
// enabled and silently handles errors.
func (c *Context) PerformAutomaticBackup() {
	if !c.Config.Backups.Auto || c.Config.Kind() != config.StoreSQLite {
		return
	}
	path, created, err := c.BackupManager().EnsureDailyBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	if created {
		logger.Info("Automatic backup created", "path", path)
	}
}

// ResolveDate validates date, defaulting to today.
func ResolveDate(svc *tracker.Service, date string) (string, error) {
	if date == "" {
		return svc.Today(), nil
	}
	if _, err := utils.ParseDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// SplitDates flattens arguments that may hold comma-separated dates.
func SplitDates(args []string) []string {
	var dates []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				dates = append(dates, part)
			}
		}
	}
	return dates
}
