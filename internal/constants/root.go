package constants

const (
	AppName            = "tally"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/tally"
	DefaultStorePath   = "~/.config/tally/tally.db"
	DefaultConfigFile  = "~/.config/tally/config.yaml"
	EnvPrefix          = "TALLY"
	Version            = "v0.3.0"

	// StateKey is the key the aggregate application state is stored under.
	StateKey = "tally-state"
	// CorruptKeyInfix marks a preserved copy of state that failed to decode.
	CorruptKeyInfix = ".corrupt."

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tally-"
	BackupFileSuffix = ".db"

	// Plan sizes
	LiftingDaysPerWeek = 3
	FastRunDays        = 3
)
