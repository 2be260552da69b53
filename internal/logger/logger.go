// Package logger writes structured, rotated logs to <config dir>/logs.
// Until Init runs every helper is a no-op.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/tally/internal/constants"
)

var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
	// Level overrides the default level ("debug", "info", "warn", "error").
	Level string
	// Stderr receives a copy of every entry in debug mode. Defaults to os.Stderr.
	Stderr io.Writer
}

// LogPath returns the log file location for configDir.
func LogPath(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

func (c Config) level() (log.Level, error) {
	if c.Level != "" {
		return log.ParseLevel(c.Level)
	}
	if c.Debug {
		return log.DebugLevel, nil
	}
	return log.WarnLevel, nil
}

// sink is the rotating log file, teed to stderr in debug mode.
func (c Config) sink(file io.Writer) io.Writer {
	if !c.Debug {
		return file
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return io.MultiWriter(stderr, file)
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	level, err := cfg.level()
	if err != nil {
		return err
	}

	path := LogPath(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	Logger = log.NewWithOptions(cfg.sink(rotated), log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

// Debug logs a debug message
func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
