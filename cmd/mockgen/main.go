package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"insightgen/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "network", "Template catalog to use: network, security")
	outDir := flag.String("out", "./fixtures", "Output directory for config.json and template folders")
	count := flag.Int("count", 3, "Number of templates per category")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Now:      time.Now(),
		Seed:     *seed,
	}

	fmt.Printf("Generating scenario '%s' (%d templates per category) to %s...\n", cfg.Scenario, cfg.Count, *outDir)

	if err := engine.Save(*outDir, engine.Generate(cfg)); err != nil {
		fmt.Printf("Failed to save fixtures: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. Try: insightgen generate --dry-run %s/config.json\n", *outDir)
}
