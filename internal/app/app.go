// Package app wires configuration, storage and the catalog service for the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"vehicle-catalog-lab/internal/cache"
	"vehicle-catalog-lab/internal/catalog"
	"vehicle-catalog-lab/internal/config"
	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/fixtures"
	"vehicle-catalog-lab/internal/metrics"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/storage/backend"
)

// App holds the components built from a Config.
type App struct {
	StoreName string
	Store     storage.SnapshotStore
	Service   *catalog.Service
	Cache     *catalog.StatsCache
}

// New opens the configured store, loads fixtures if requested and builds the service.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}

	policy, err := catalog.ParseLivePolicy(cfg.LivePolicy)
	if err != nil {
		return nil, err
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	if cfg.UseFixtures {
		err := fixtures.Load(ctx, store)
		switch {
		case err == nil:
			logger.Printf("Loaded %d fixture snapshots", len(fixtures.Snapshots()))
		case errors.Is(err, storage.ErrDuplicateKey):
			logger.Println("Fixtures already present, skipping load")
		default:
			store.Close()
			return nil, err
		}
	}

	excluded := cfg.ExcludedIDs
	if cfg.UseFixtures && len(excluded) == 0 {
		excluded = fixtures.ExcludedIDs
	}

	statsCache := cache.New[string, *domain.StatsResult](cfg.StatsCacheTTL, cfg.StatsCacheSize)

	svc := catalog.NewService(catalog.Options{
		Store:  store,
		Filter: catalog.NewExclusionFilter(excluded, cfg.RewardSuffix),
		Aggregator: metrics.NewAggregator(metrics.Options{
			Parallel: cfg.ParallelAggregation,
			Workers:  cfg.AggregationWorkers,
		}),
		LivePolicy: policy,
		Cache:      statsCache,
		Logger:     logger,
	})

	return &App{StoreName: cfg.Store, Store: store, Service: svc, Cache: statsCache}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
