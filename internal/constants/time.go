package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is the month key format (YYYY-MM)
	MonthFormat = "2006-01"

	// BackupTimestampFormat names backup files at minute precision
	BackupTimestampFormat = "20060102-1504"
)
