package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"insightgen/internal/generator"
	"insightgen/internal/journal"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	openUI      bool
	keepJournal bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <config.json>",
	Short: "Generate insights as described by a run config",
	Long: `Reads the run config and the forecast/, current/ and past/ template folders next to it,
then posts the requested number of insights for every window.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]
		if info, err := os.Stat(configPath); err != nil || info.IsDir() {
			return fmt.Errorf("configuration file '%s' does not exist", configPath)
		}

		var j *journal.Journal
		var rec generator.Recorder
		if keepJournal {
			j = journal.New()
			rec = j
		}

		started := time.Now()
		sum, err := runner.Generate(cmd.Context(), configPath, rec)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), sum)

		if j != nil {
			path, err := j.Save(cfg.CacheDir, journal.NewRunID(started))
			if err != nil {
				log.Error().Err(err).Msg("Failed to save journal")
			} else if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Journal: %s\n", path)
			}
		}

		if openUI {
			if err := browser.OpenURL(cfg.UIURL); err != nil {
				log.Warn().Err(err).Str("url", cfg.UIURL).Msg("Failed to open browser")
			}
		}
		return cmd.Context().Err()
	},
}

func printSummary(w io.Writer, sum generator.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tREQUESTED\tPOSTED\tFAILED")
	for _, r := range sum.Windows {
		if r.Requested == 0 {
			continue
		}
		failed := fmt.Sprint(r.Failed)
		if r.Skipped {
			failed = "skipped"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.Label, r.Requested, r.Posted, failed)
	}
	tw.Flush()

	fmt.Fprintf(w, "Total: %s posted, %s failed, %d skipped\n",
		color.GreenString("%d", sum.Posted),
		failedColor(sum.Failed),
		sum.Skipped)
	if sum.Interrupted {
		fmt.Fprintln(w, color.YellowString("Run interrupted: %d requested insights were not sent.", sum.Skipped))
	}
}

func failedColor(n int) string {
	if n == 0 {
		return fmt.Sprint(n)
	}
	return color.RedString("%d", n)
}

func init() {
	generateCmd.Flags().BoolVar(&openUI, "open", false, "open the platform insights page when done")
	generateCmd.Flags().BoolVar(&keepJournal, "journal", false, "write every generated insight to a JSONL journal in the cache folder")
}
