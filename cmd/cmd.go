// Package cmd defines the command-line interfaces of hoc and hocctl.
package cmd

import (
	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the hocctl root command
	ctlCmd.AddCommand(runsCmd)
	ctlCmd.AddCommand(mcpCmd)
	ctlCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of ctlCmd to Viper
	ctlCmd.PersistentFlags().String("analysis-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	ctlCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for mysql/postgresql, or the sqlite file path")
	ctlCmd.PersistentFlags().String("color", contract.DefaultColor, "Enable colored labels in output (auto/yes/no/true/false/1/0)")
	ctlCmd.PersistentFlags().String("git-binary", contract.DefaultGitBinary, "Git executable used to walk history")
	ctlCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(ctlCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	bindRunsFlags()
}
