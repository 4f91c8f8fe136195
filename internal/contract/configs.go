package contract

import (
	"fmt"
	"strings"

	"github.com/huangsam/hoc/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 1000
	DefaultColor       = "auto"
)

// Config holds the validated runtime configuration.
type Config struct {
	RepoPath             string
	FindRenamesAndCopies bool // Set from the command line only, never from config sources
	GitBinary            string

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	ResultLimit int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override, 0 means detect

	UseColors bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually by the command, so no tag
	RepoPathStr string

	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Color             string `mapstructure:"color"`
	GitBinary         string `mapstructure:"git-binary"`

	// --- Fields from hocctl flags ---
	Limit      int    `mapstructure:"limit"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate validates input and populates cfg.
// isTerminal tells whether stderr is attached to a terminal, for color "auto".
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, isTerminal bool) error {
	cfg.RepoPath = input.RepoPathStr
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}

	cfg.GitBinary = strings.TrimSpace(input.GitBinary)
	if cfg.GitBinary == "" {
		cfg.GitBinary = DefaultGitBinary
	}

	colors, err := ResolveColor(input.Color, isTerminal)
	if err != nil {
		return fmt.Errorf("invalid color value: %w", err)
	}
	cfg.UseColors = colors

	switch {
	case input.Limit == 0:
		cfg.ResultLimit = DefaultResultLimit
	case input.Limit < 0 || input.Limit > MaxResultLimit:
		return fmt.Errorf("limit must be between 1 and %d", MaxResultLimit)
	default:
		cfg.ResultLimit = input.Limit
	}
	cfg.OutputFile = input.OutputFile

	output := schema.OutputMode(strings.ToLower(strings.TrimSpace(input.Output)))
	if output == "" {
		output = schema.TableOut
	}
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be table, json, csv", input.Output)
	}
	cfg.Output = output

	if input.Width < 0 {
		return fmt.Errorf("width must be non-negative")
	}
	cfg.Width = input.Width

	return validateBackendConfig(cfg, input)
}

// validateBackendConfig validates the run history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(input.AnalysisBackend)))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	return ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("unsupported backend: %s", backend)
	}
	return nil
}
