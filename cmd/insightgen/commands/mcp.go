package commands

import (
	"insightgen/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the insight tools to an MCP client over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(mcp.Deps{
			Client:       client,
			Runner:       runner,
			Pool:         pool,
			TargetDomain: cfg.AIOps.TargetDomain,
		}, Version)
		return mcp.Serve(cmd.Context(), server)
	},
}
