package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"insightgen/internal/aiops"
	"insightgen/internal/config"
	"insightgen/internal/generator"
	"insightgen/internal/inventory"
	"insightgen/internal/logging"
	"insightgen/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	endpoint string
	token    string
	dryRun   bool

	cfg    *config.AppConfig
	client aiops.Client
	pool   *inventory.PoolLoader
	runner *service.Runner
)

var rootCmd = &cobra.Command{
	Use:   "insightgen",
	Short: "insightgen generates synthetic AI-Ops insights",
	Long: `Generates synthetic AI-Ops insights from local templates and posts them to the platform.
Forecast, current and past templates are picked round-robin, given fresh identifiers, severities,
devices and timestamps, and submitted window by window as described by a small JSON run config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		applyFlags(cmd, cfg)

		client = aiops.NewClient(cfg.AIOps)
		pool = inventory.NewPoolLoader(cfg.Devices, client, generator.NewRand(cfg.Seed))
		runner = service.NewRunner(client, pool, cfg.Seed, nil)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("insightgen starting")
		logBanner()
	},
}

// applyFlags lets command-line flags override the environment.
func applyFlags(cmd *cobra.Command, c *config.AppConfig) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		c.AIOps.Endpoint = endpoint
	}
	if flags.Changed("token") {
		c.AIOps.Token = token
	}
	if flags.Changed("dry-run") {
		c.AIOps.DryRun = dryRun
	}
}

func logBanner() {
	ev := log.Info().
		Str("endpoint", client.Endpoint()).
		Bool("token", client.HasToken()).
		Bool("dryRun", client.DryRun()).
		Int("deviceCount", cfg.Devices.Count).
		Str("deviceSelection", string(cfg.Devices.Selection)).
		Str("deviceSource", string(cfg.Devices.Source))
	if client.HasToken() {
		ev = ev.Str("tokenPreview", client.TokenPreview())
	}
	ev.Msg("Platform connection")
	if client.DryRun() {
		log.Warn().Msg("DRY RUN MODE - no API calls will be made")
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "insights endpoint URL (overrides AIOPS_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (overrides AIOPS_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log what would be sent without calling the platform")

	rootCmd.AddCommand(generateCmd, replayCmd, clearCmd, migrateCmd, devicesCmd, mcpCmd)
}
