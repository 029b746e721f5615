package commands

import (
	"fmt"

	"insightgen/internal/service"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <source-domain>",
	Short: "Copy insights from another domain to AIOPS_DOMAIN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := service.NewMigrator(client, cfg.AIOps.TargetDomain).Migrate(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded insights from: %s\n", res.Source)
		fmt.Fprintf(out, "Target domain:        %s\n", res.Target)
		fmt.Fprintf(out, "Transferred %d of %d insights (%s failed)\n", res.Transferred, res.Fetched, failedColor(res.Failed))

		if !res.Success() {
			return fmt.Errorf("migration failed for %d insights", res.Failed)
		}
		return nil
	},
}
