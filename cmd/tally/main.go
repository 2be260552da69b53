package main

import (
	"github.com/alecthomas/kong"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/cli/backups"
	"github.com/julianstephens/tally/internal/cli/days"
	"github.com/julianstephens/tally/internal/cli/plans"
	"github.com/julianstephens/tally/internal/cli/settings"
	"github.com/julianstephens/tally/internal/cli/stats"
	"github.com/julianstephens/tally/internal/cli/system"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/planner"
	"github.com/julianstephens/tally/internal/tracker"
	"github.com/julianstephens/tally/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_file}"`
	Store   string `help:"SQLite path, .json path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded; use TALLY_DB_CONNECTION or 'tally keyring set' instead."`
	Debug   bool   `help:"Mirror debug logs to stderr."`

	Init      system.InitCmd       `cmd:"" help:"Initialize tally storage."`
	Migrate   system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui       system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Gate      cli.GateCmd          `cmd:"" help:"Show what must be done before today's view."`
	Day       days.DayCmd          `cmd:"" help:"Show and record a day."`
	Plan      plans.PlanCmd        `cmd:"" help:"Plan and confirm lifting weeks and fasting months."`
	Stats     stats.StatsCmd       `cmd:"" help:"Weight trends and goal achievement."`
	Conflicts cli.ConflictsCmd     `cmd:"" help:"Check a day for pass conflicts."`
	Validate  system.ValidateCmd   `cmd:"" help:"Validate stored data for conflicts."`
	Settings  settings.SettingsCmd `cmd:"" help:"View or change settings."`
	Backup    backups.BackupCmd    `cmd:"" help:"Manage database backups."`
	Export    system.ExportCmd     `cmd:"" help:"Export the state as JSON."`
	Import    system.ImportCmd     `cmd:"" help:"Replace the state with an export."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show whether the keyring is usable." default:"1"`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	DebugCmd system.DebugCmd `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily diet, weight, lifting and fasting tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		errors.Fatalf("invalid configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir(),
		Level:     cfg.LogLevel,
	}); err != nil {
		errors.Fatal(err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "store", cfg.Kind())

	store, err := cli.NewProvider(cfg)
	if err != nil {
		errors.Fatal(err)
	}

	// Commands open the store lazily; init creates it.
	appCtx := &cli.Context{
		Config:     cfg,
		ConfigPath: CLI.Config,
		Store:      store,
	}
	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	errors.Exit(err, planner.ErrSelectionRejected, utils.ErrInvalidDate, tracker.ErrPlanIncomplete)
}
