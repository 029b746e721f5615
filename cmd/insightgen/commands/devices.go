package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"insightgen/internal/generator"
	"insightgen/internal/inventory"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Show the device pool generated insights draw from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := pool.Directory(cmd.Context(), generator.NewRand(cfg.Seed))
		if err != nil {
			return err
		}
		printDevices(cmd.OutOrStdout(), dir.Policy(), dir.Devices())
		return nil
	},
}

func printDevices(w io.Writer, policy inventory.Policy, devices []inventory.Device) {
	fmt.Fprintf(w, "%d devices, %s selection\n", len(devices), policy)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tNAME\tTYPE")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.UID, d.Name, d.Type)
	}
	tw.Flush()
}
