package settings

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/config"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone      *string `help:"IANA timezone used to decide what today is."`
	RollingWindow *int    `help:"Days in the rolling weight average."`
	AutoBackup    *bool   `help:"Create a daily backup of the SQLite store on startup."`
	MaxBackups    *int    `help:"Number of backups rotation keeps."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if c.List {
		printSettings(ctx)
		return nil
	}

	next := *ctx.Config
	updated := false
	if c.Timezone != nil {
		next.Timezone = *c.Timezone
		updated = true
	}
	if c.RollingWindow != nil {
		next.RollingWindow = *c.RollingWindow
		updated = true
	}
	if c.AutoBackup != nil {
		next.Backups.Auto = *c.AutoBackup
		updated = true
	}
	if c.MaxBackups != nil {
		next.Backups.Max = *c.MaxBackups
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if ctx.ConfigPath == "" {
		return fmt.Errorf("no config file path set")
	}
	if err := next.Save(ctx.ConfigPath); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	*ctx.Config = next
	ctx.Println(cli.Success("Settings saved to " + config.ExpandPath(ctx.ConfigPath)))
	return nil
}

func printSettings(ctx *cli.Context) {
	cfg := ctx.Config
	ctx.Println(cli.Heading("Current Settings"))
	ctx.Printf("  Store:          %s (%s)\n", cfg.Store, cfg.Kind())
	ctx.Printf("  Timezone:       %s\n", cfg.Timezone)
	ctx.Printf("  Rolling window: %d days\n", cfg.RollingWindow)
	ctx.Printf("  Auto backup:    %v\n", cfg.Backups.Auto)
	ctx.Printf("  Max backups:    %d\n", cfg.Backups.Max)
	if cfg.LogLevel != "" {
		ctx.Printf("  Log level:      %s\n", cfg.LogLevel)
	}
	if ctx.ConfigPath != "" {
		ctx.Println(cli.Muted("Config file: " + config.ExpandPath(ctx.ConfigPath)))
	}
}
