// Package catalog reconstructs the vehicle catalog as of a version and serves
// stats and vehicle lookups over it.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

// LivePolicy decides whether Live rows are candidates when reconstructing a
// target version older than the live version.
type LivePolicy int

const (
	// LivePolicyHistoricalOnly selects from Historical rows only. A target between
	// the newest Historical version and the live version never sees Live rows.
	LivePolicyHistoricalOnly LivePolicy = iota
	// LivePolicyIncludeLive also considers Live rows whose version is <= target.
	LivePolicyIncludeLive
)

// ParseLivePolicy maps a configuration value to a LivePolicy.
func ParseLivePolicy(s string) (LivePolicy, error) {
	switch s {
	case "", "historical-only":
		return LivePolicyHistoricalOnly, nil
	case "include-live":
		return LivePolicyIncludeLive, nil
	default:
		return 0, fmt.Errorf("unknown live policy %q", s)
	}
}

func (p LivePolicy) String() string {
	if p == LivePolicyIncludeLive {
		return "include-live"
	}
	return "historical-only"
}

// Reconstruction modes, used as metric labels.
const (
	ModeLive       = "live"
	ModeHistorical = "historical"
)

// Reconstructor merges Live and Historical rows into the catalog visible at a version.
type Reconstructor struct {
	reader storage.SnapshotReader
	policy LivePolicy
}

// NewReconstructor creates a new Reconstructor.
func NewReconstructor(reader storage.SnapshotReader, policy LivePolicy) *Reconstructor {
	return &Reconstructor{reader: reader, policy: policy}
}

// Mode returns the reconstruction mode used for target.
func (r *Reconstructor) Mode(target string, versions Versions) string {
	if target == "" || target == versions.LiveVersion() {
		return ModeLive
	}
	return ModeHistorical
}

// Reconstruct returns identifier -> snapshot as of target.
//
// An empty target, or one equal to the live version, returns the Live set
// without scanning Historical rows. Otherwise every identifier maps to its
// greatest-version snapshot among the selected rows with version <= target;
// identifiers with no such row are absent.
func (r *Reconstructor) Reconstruct(ctx context.Context, target string, versions Versions) (domain.Catalog, error) {
	if r.Mode(target, versions) == ModeLive {
		live, err := r.reader.Live(ctx)
		if err != nil {
			return nil, fmt.Errorf("read live: %w", err)
		}
		catalog := make(domain.Catalog, len(live))
		for _, s := range live {
			catalog[s.Identifier] = s
		}
		return catalog, nil
	}

	selected := version.AtOrBefore(versions.Historical, target)

	var historical, live []*domain.VehicleSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.reader.HistoricalIn(gctx, selected)
		if err != nil {
			return fmt.Errorf("read historical: %w", err)
		}
		historical = rows
		return nil
	})
	if r.policy == LivePolicyIncludeLive {
		g.Go(func() error {
			rows, err := r.reader.Live(gctx)
			if err != nil {
				return fmt.Errorf("read live: %w", err)
			}
			live = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := make(domain.Catalog)
	keepGreatest(catalog, historical, target)
	keepGreatest(catalog, live, target)
	return catalog, nil
}

// keepGreatest folds rows with version <= target into catalog, keeping the
// greatest version per identifier.
func keepGreatest(catalog domain.Catalog, rows []*domain.VehicleSnapshot, target string) {
	for _, s := range rows {
		if version.Compare(s.Version, target) > 0 {
			continue
		}
		if cur, ok := catalog[s.Identifier]; ok && version.Compare(cur.Version, s.Version) >= 0 {
			continue
		}
		catalog[s.Identifier] = s
	}
}
