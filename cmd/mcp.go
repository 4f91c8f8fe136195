package cmd

import (
	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the hits-of-code MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents compute hits-of-code
and read the run history via standard tools.

Tools:
  get_hits_of_code - hits-of-code of a repository (repo_path, find_renames_and_copies)
  get_run_history  - recent runs from the run history store (limit)`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		client := &contract.LocalGitClient{Binary: cfg.GitBinary}
		return mcp.StartMCPServer(rootCtx, cfg, client, storeManager)
	},
}
