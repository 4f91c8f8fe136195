package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	ErrorColor = color.New(color.FgRed, color.Bold) // ErrorColor marks fatal problems.
	WarnColor  = color.New(color.FgYellow)          // WarnColor marks recoverable problems.
	InfoColor  = color.New(color.FgCyan)            // InfoColor marks informational values.
)

// LogOutput is where the log helpers write. It is swapped in tests.
var LogOutput io.Writer = os.Stderr

// SetColors turns colored console output on or off globally.
func SetColors(enabled bool) {
	color.NoColor = !enabled
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	LogError(msg, err)
	os.Exit(1)
}

// LogError logs an error message to stderr.
func LogError(msg string, err error) {
	_, _ = fmt.Fprintf(LogOutput, "%s %s: %v\n", ErrorColor.Sprint("Error:"), msg, err)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(LogOutput, "%s %s: %v\n", WarnColor.Sprint("Warn:"), msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hoc_runs.db"
	}
	return filepath.Join(homeDir, ".hoc_runs.db")
}

// SelectOutputFile returns the file to write to, falling back to os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ResolveColor decides whether colors are used. "auto" or an empty value
// follows isTerminal; anything else must be a ParseBoolString value.
func ResolveColor(s string, isTerminal bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", DefaultColor:
		return isTerminal, nil
	default:
		return ParseBoolString(s)
	}
}
