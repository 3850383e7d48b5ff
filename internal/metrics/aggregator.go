// Package metrics aggregates economic and classification statistics over a catalog.
package metrics

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"vehicle-catalog-lab/internal/domain"
)

// cancelCheckInterval is how many vehicles the sequential pass folds between context checks.
const cancelCheckInterval = 256

// Options configures an Aggregator.
type Options struct {
	// Parallel aggregates country buckets concurrently and merges them.
	Parallel bool
	// Workers bounds concurrent buckets in parallel mode. Values < 1 mean 1.
	Workers int
}

// Aggregator computes Stats over a reconstructed, filtered catalog.
type Aggregator struct {
	parallel bool
	workers  int
}

// NewAggregator creates a new Aggregator.
func NewAggregator(opts Options) *Aggregator {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{parallel: opts.Parallel, workers: workers}
}

// Aggregate computes Stats in a single pass. Malformed economic fields count
// as zero; the only error is context cancellation.
// An empty catalog yields all-zero stats with non-nil maps.
func (a *Aggregator) Aggregate(ctx context.Context, catalog domain.Catalog) (*domain.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.parallel && len(catalog) > 0 {
		return a.aggregateParallel(ctx, catalog)
	}
	return aggregateSequential(ctx, catalog)
}

func aggregateSequential(ctx context.Context, catalog domain.Catalog) (*domain.Stats, error) {
	stats := domain.NewStats()
	n := 0
	for _, v := range catalog {
		if v == nil {
			continue
		}
		accumulate(stats, v)
		n++
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return stats, nil
}

// aggregateParallel buckets vehicles by country. Accumulators are disjoint per
// country, so partial results merge by plain addition.
func (a *Aggregator) aggregateParallel(ctx context.Context, catalog domain.Catalog) (*domain.Stats, error) {
	buckets := make(map[string][]*domain.VehicleSnapshot)
	for _, v := range catalog {
		if v == nil {
			continue
		}
		buckets[v.Country] = append(buckets[v.Country], v)
	}

	countries := make([]string, 0, len(buckets))
	for c := range buckets {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	partials := make([]*domain.Stats, len(countries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, country := range countries {
		vehicles := buckets[country]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partial := domain.NewStats()
			for _, v := range vehicles {
				accumulate(partial, v)
			}
			partials[i] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := domain.NewStats()
	for _, p := range partials {
		stats.Merge(p)
	}
	return stats, nil
}
