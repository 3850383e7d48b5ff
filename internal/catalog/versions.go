package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

// Versions is the version universe of the store at one point in time.
type Versions struct {
	Live       []string // distinct Live versions, ascending
	Historical []string // distinct Historical versions, ascending
}

// LoadVersions reads the Live and Historical version sets concurrently.
func LoadVersions(ctx context.Context, reader storage.SnapshotReader) (Versions, error) {
	var v Versions

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		live, err := reader.LiveVersions(gctx)
		if err != nil {
			return fmt.Errorf("live versions: %w", err)
		}
		version.Sort(live)
		v.Live = live
		return nil
	})
	g.Go(func() error {
		hist, err := reader.HistoricalVersions(gctx)
		if err != nil {
			return fmt.Errorf("historical versions: %w", err)
		}
		version.Sort(hist)
		v.Historical = hist
		return nil
	})
	if err := g.Wait(); err != nil {
		return Versions{}, err
	}
	return v, nil
}

// LiveVersion returns the greatest Live version, or "" for an empty store.
func (v Versions) LiveVersion() string {
	latest, _ := version.Latest(v.Live)
	return latest
}

// All returns the deduplicated union of both sets, ascending.
func (v Versions) All() []string {
	return version.MergeUniverse(v.Live, v.Historical)
}
