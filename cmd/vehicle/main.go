// Package main prints one vehicle with its version history.
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

	id := flag.String("id", "", "Vehicle identifier (required)")
	targetVersion := flag.String("version", "", "Version to look up (empty for live)")
	format := flag.String("format", "markdown", "Output format: json or markdown")
	store := flag.String("store", cfg.Store, "Snapshot store: memory, postgres, sqlite or clickhouse")
	useFixtures := flag.Bool("use-fixtures", cfg.UseFixtures, "Load the demo catalog into the store")
	flag.Parse()

	if *id == "" && flag.NArg() > 0 {
		*id = flag.Arg(0)
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	cfg.Store = *store
	cfg.UseFixtures = *useFixtures
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outFormat, err := reporting.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "[vehicle] ", log.LstdFlags|log.Lshortfile)
	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	detail, err := a.Service.GetVehicle(ctx, *id, *targetVersion)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, catalog.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	default:
		logger.Fatalf("Failed to get vehicle: %v", err)
	}

	out, err := reporting.RenderVehicle(detail, outFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}
