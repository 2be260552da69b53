package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/logger"
)

const (
	ExitFailure  = 1
	ExitRejected = 2
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// IsRejection reports whether err wraps any of the given sentinels.
func IsRejection(err error, rejections ...error) bool {
	for _, target := range rejections {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}

// ExitCode maps err to a process exit status: 0 for nil, ExitRejected when
// err wraps one of rejections, ExitFailure otherwise.
func ExitCode(err error, rejections ...error) int {
	switch {
	case err == nil:
		return 0
	case IsRejection(err, rejections...):
		return ExitRejected
	}
	return ExitFailure
}

// Exit reports err and exits with ExitCode. Rejected input is logged as a
// warning rather than an error. A nil err returns without exiting.
func Exit(err error, rejections ...error) {
	if err == nil {
		return
	}
	code := ExitCode(err, rejections...)
	if code == ExitRejected {
		logger.Warn("Input rejected", "error", err)
	} else {
		logger.Error("Command execution failed", "error", err)
	}
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(code)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(ExitFailure)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(ExitFailure)
}
