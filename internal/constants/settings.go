package constants

const (
	// Default settings values
	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultRollingWindow = 7
	DefaultAutoBackup    = true
)
