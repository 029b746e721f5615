package commands

import (
	"fmt"
	"io"

	"insightgen/internal/journal"
	"insightgen/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var failedOnly bool

var replayCmd = &cobra.Command{
	Use:   "replay [run-id]",
	Short: "Re-post the insights of a run saved with generate --journal",
	Long: `Loads <run-id>.jsonl from the cache folder and posts every insight again, unchanged
and under its original window. Without a run ID the most recent journal is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var runID string
		if len(args) == 1 {
			runID = args[0]
		} else {
			latest, err := journal.Latest(cfg.CacheDir)
			if err != nil {
				return err
			}
			runID = latest
		}

		j, err := journal.Load(cfg.CacheDir, runID)
		if err != nil {
			return err
		}

		res := service.NewReplayer(client).Replay(cmd.Context(), j, failedOnly)
		printReplay(cmd.OutOrStdout(), runID, res)
		if res.Failed > 0 {
			return fmt.Errorf("%d insights could not be replayed", res.Failed)
		}
		return cmd.Context().Err()
	},
}

func printReplay(w io.Writer, runID string, res service.ReplayResult) {
	fmt.Fprintf(w, "Replayed %s: %s posted, %s failed, %d skipped (%d entries)\n",
		runID,
		color.GreenString("%d", res.Posted),
		failedColor(res.Failed),
		res.Skipped,
		res.Entries)
	if res.Interrupted {
		fmt.Fprintln(w, color.YellowString("Replay interrupted before all entries were sent."))
	}
}

func init() {
	replayCmd.Flags().BoolVar(&failedOnly, "failed-only", false, "only re-post insights that were rejected the first time")
}
