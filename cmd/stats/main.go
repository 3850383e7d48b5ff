// Package main prints catalog stats, optionally as of a past version.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"vehicle-catalog-lab/internal/app"
	"vehicle-catalog-lab/internal/catalog"
	"vehicle-catalog-lab/internal/config"
	"vehicle-catalog-lab/internal/reporting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (config values as defaults)
	targetVersion := flag.String("version", "", "Catalog version to reconstruct (empty for current)")
	format := flag.String("format", "markdown", "Output format: json, csv or markdown")
	store := flag.String("store", cfg.Store, "Snapshot store: memory, postgres, sqlite or clickhouse")
	useFixtures := flag.Bool("use-fixtures", cfg.UseFixtures, "Load the demo catalog into the store")
	livePolicy := flag.String("live-policy", cfg.LivePolicy, "Live policy for past versions: historical-only or include-live")
	flag.Parse()

	cfg.Store = *store
	cfg.UseFixtures = *useFixtures
	cfg.LivePolicy = *livePolicy
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outFormat, err := reporting.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "[stats] ", log.LstdFlags|log.Lshortfile)
	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	result, err := a.Service.GetStats(ctx, *targetVersion)
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		logger.Fatalf("Failed to compute stats: %v", err)
	}

	out, err := reporting.RenderStats(result, outFormat)
	if err != nil {
		logger.Fatalf("Failed to render stats: %v", err)
	}
	fmt.Print(out)
}
