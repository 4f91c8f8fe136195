package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/hoc/core"
	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/iocache"
	"github.com/huangsam/hoc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// programName is how hoc refers to itself in the usage line.
var programName = filepath.Base(os.Args[0])

// UsageError reports an invalid hoc invocation.
type UsageError struct {
	Program string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s [%s]", e.Program, schema.FindRenamesAndCopiesFlag)
}

// ExitCodeOf maps the outcome of a command to a process exit code.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// hocCmd is the entrypoint of the hoc binary. Flag parsing is disabled since
// the only accepted invocations are checked by hand in parseHocArgs.
var hocCmd = &cobra.Command{
	Use:                "hoc [--find-renames-and-copies]",
	Short:              "Print the hits-of-code of the repository in the current directory.",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	RunE:               runHoc,
}

// parseHocArgs accepts no arguments or the single rename detection flag.
func parseHocArgs(args []string) (bool, error) {
	switch {
	case len(args) == 0:
		return false, nil
	case len(args) == 1 && args[0] == schema.FindRenamesAndCopiesFlag:
		return true, nil
	default:
		return false, &UsageError{Program: programName}
	}
}

func runHoc(cmd *cobra.Command, args []string) error {
	find, err := parseHocArgs(args)
	if err != nil {
		return err
	}

	hocSetup()
	cfg.FindRenamesAndCopies = find
	defer iocache.CloseStores()

	client := &contract.LocalGitClient{Binary: cfg.GitBinary}
	if err := core.ExecuteHoc(rootCtx, cfg, client, storeManager, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to compute hits-of-code: %w", err)
	}
	return nil
}

// hocSetup loads configuration for the hoc binary. Configuration and store
// problems never fail the computation, so they are reported as warnings.
//
// hoc runs inside checkouts it does not trust, so it reads its own viper
// instance from $HOME, HOC_CONFIG and HOC_ variables only, never from a
// .hoc.yaml in the working directory.
func hocSetup() {
	v := viper.New()
	configureViper(v)
	if err := loadConfigFile(v, false); err != nil {
		contract.LogWarn("Ignoring config file", err)
	}

	*input = contract.ConfigRawInput{}
	if err := v.Unmarshal(input); err != nil {
		contract.LogWarn("Ignoring configuration", err)
		*input = contract.ConfigRawInput{}
	}
	input.RepoPathStr = "."
	// hocctl presentation settings do not apply here
	input.Limit, input.Output, input.OutputFile, input.Width = 0, "", "", 0

	if err := contract.ProcessAndValidate(cfg, input, stderrIsTerminal()); err != nil {
		contract.LogWarn("Ignoring invalid configuration", err)
		*cfg = contract.Config{
			RepoPath:        ".",
			GitBinary:       contract.DefaultGitBinary,
			AnalysisBackend: schema.NoneBackend,
		}
	}
	contract.SetColors(cfg.UseColors)

	if err := iocache.InitStores(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		contract.LogWarn("Run tracking disabled", err)
	}
}

// RunHoc runs the hoc binary with args and returns its exit code.
// The total goes to stdout; problems are reported on contract.LogOutput.
func RunHoc(args []string, stdout io.Writer) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args for nil
	}
	hocCmd.SetArgs(args)
	hocCmd.SetOut(stdout)
	err := hocCmd.Execute()

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		_, _ = fmt.Fprintln(contract.LogOutput, usageErr.Error())
	} else if err != nil {
		_, _ = fmt.Fprintf(contract.LogOutput, "%s %v\n", contract.ErrorColor.Sprint("Error:"), err)
	}
	return ExitCodeOf(err)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configureViper(viper.GetViper())
}

// configureViper sets the environment binding and defaults shared by both binaries.
func configureViper(v *viper.Viper) {
	// Set environment variable prefix
	v.SetEnvPrefix("HOC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	v.SetDefault("analysis-backend", schema.NoneBackend)
	v.SetDefault("analysis-db-connect", "")
	v.SetDefault("color", contract.DefaultColor)
	v.SetDefault("git-binary", contract.DefaultGitBinary)
	v.SetDefault("limit", contract.DefaultResultLimit)
	v.SetDefault("output", schema.TableOut)
}

// loadConfigFile handles config file loading logic common to all setup functions.
// The working directory is searched for .hoc.yaml only when searchWorkDir is set.
func loadConfigFile(v *viper.Viper, searchWorkDir bool) error {
	// Handle config file
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".hoc") // Name of config file (without extension)
		v.SetConfigType("yaml") // We'll use YAML format
		if searchWorkDir {
			v.AddConfigPath(".") // Look in the current directory
		}
		v.AddConfigPath("$HOME") // Look in the home directory
	}

	// Load config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	return nil
}

// stderrIsTerminal reports whether diagnostics go to a terminal.
func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// SetStoreManager overrides the store manager used by hocctl commands.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
