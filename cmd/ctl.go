package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/iocache"
	"github.com/huangsam/hoc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeManager is the global persistence manager instance.
var storeManager contract.StoreManager = iocache.Manager

// ctlCmd is the command-line entrypoint of the hocctl admin tool.
var ctlCmd = &cobra.Command{
	Use:                "hocctl",
	Short:              "Manage hits-of-code run history.",
	Long:               `hocctl inspects, exports and maintains the run history recorded by hoc, and serves hits-of-code over MCP.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// configSetup unmarshals config and runs validation without touching any store.
func configSetup() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(viper.GetViper(), true); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	*input = contract.ConfigRawInput{}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.RepoPathStr = "."

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input, stderrIsTerminal()); err != nil {
		return err
	}
	contract.SetColors(cfg.UseColors)
	return nil
}

// configSetupWrapper wraps configSetup to provide PreRunE for commands that
// manage the store themselves (clear, migrate).
func configSetupWrapper(_ *cobra.Command, _ []string) error {
	return configSetup()
}

// sharedSetup loads configuration and opens the run history store.
func sharedSetup(_ *cobra.Command, _ []string) error {
	if err := configSetup(); err != nil {
		return err
	}

	// Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// requireRunStore returns the configured run store, or an error when run
// history is disabled.
func requireRunStore() (contract.RunStore, error) {
	if cfg.AnalysisBackend == schema.NoneBackend {
		return nil, errors.New("run history is not enabled. Set analysis-backend to sqlite, mysql or postgresql")
	}
	store := storeManager.GetRunStore()
	if store == nil {
		return nil, errors.New("run history store is not initialized")
	}
	return store, nil
}

// ExecuteCtl runs the hocctl root command.
func ExecuteCtl() error {
	defer iocache.CloseStores()
	return ctlCmd.Execute()
}
