package cmd

import (
	"runtime"

	"github.com/huangsam/hoc/internal/iocache"
	"github.com/spf13/cobra"
)

// versionCmd reports which build of hoc and hocctl is installed.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hocctl build and the run history schema it ships.",
	Long: `Print the release, source commit and build date of this hocctl build,
the Go toolchain it was compiled with, and the newest run history schema
version it can migrate to.

"hocctl runs migrate" without --target-version upgrades a store to the
schema version printed here. Include this output when reporting a bug.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("hocctl %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Schema:  v%d\n", iocache.LatestMigrationVersion)
	},
}
