package commands

import (
	"errors"
	"fmt"
	"os"

	"insightgen/internal/service"

	"github.com/spf13/cobra"
)

var assumeYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete ALL insights from the platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clearer := service.NewClearer(client)

		var ok bool
		if assumeYes {
			ok = clearer.Clear(cmd.Context())
		} else {
			ok = clearer.ClearWithConfirmation(cmd.Context(), os.Stdin, cmd.OutOrStdout())
		}
		if !ok {
			return errors.New("insights were not cleared")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All insights cleared.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}
