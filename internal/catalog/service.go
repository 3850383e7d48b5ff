package catalog

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"vehicle-catalog-lab/internal/cache"
	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/metrics"
	"vehicle-catalog-lab/internal/observability"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

// StatsCache caches stats results keyed by requested version ("" is the current catalog).
type StatsCache = cache.TTL[string, *domain.StatsResult]

// Options contains configuration for creating a Service.
type Options struct {
	Store      storage.SnapshotReader
	Filter     *ExclusionFilter    // nil means NewExclusionFilter(nil, "")
	Aggregator *metrics.Aggregator // nil means sequential aggregation
	LivePolicy LivePolicy
	Cache      *StatsCache // optional; owned by the caller
	Logger     *log.Logger
}

// Service answers stats and vehicle queries over a snapshot store.
type Service struct {
	store         storage.SnapshotReader
	reconstructor *Reconstructor
	filter        *ExclusionFilter
	aggregator    *metrics.Aggregator
	cache         *StatsCache
	logger        *log.Logger
}

// NewService creates a new Service.
func NewService(opts Options) *Service {
	filter := opts.Filter
	if filter == nil {
		filter = NewExclusionFilter(nil, "")
	}

	aggregator := opts.Aggregator
	if aggregator == nil {
		aggregator = metrics.NewAggregator(metrics.Options{})
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		store:         opts.Store,
		reconstructor: NewReconstructor(opts.Store, opts.LivePolicy),
		filter:        filter,
		aggregator:    aggregator,
		cache:         opts.Cache,
		logger:        logger,
	}
}

// GetStats aggregates the catalog as of v, or the current catalog if v is empty.
// Results served from the cache are shared and must not be modified.
func (s *Service) GetStats(ctx context.Context, v string) (*domain.StatsResult, error) {
	if v != "" {
		if err := version.Validate(v); err != nil {
			observability.RecordStatsRequest("invalid")
			return nil, &ValidationError{Field: "version", Value: v, Err: err}
		}
	}

	if s.cache != nil {
		cached, ok := s.cache.Get(v)
		observability.RecordCacheLookup("stats", ok)
		if ok {
			observability.RecordStatsRequest("cached")
			return cached, nil
		}
	}

	result, err := s.computeStats(ctx, v)
	if err != nil {
		observability.RecordStatsRequest("error")
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(v, result)
	}
	observability.RecordStatsRequest("ok")
	return result, nil
}

func (s *Service) computeStats(ctx context.Context, v string) (*domain.StatsResult, error) {
	versions, err := LoadVersions(ctx, s.store)
	if err != nil {
		s.logger.Printf("Failed to load versions: %v", err)
		return nil, &StorageError{Op: "load versions", Err: err}
	}
	observability.SetKnownVersions(len(versions.All()))

	mode := s.reconstructor.Mode(v, versions)
	start := time.Now()
	reconstructed, err := s.reconstructor.Reconstruct(ctx, v, versions)
	if err != nil {
		s.logger.Printf("Failed to reconstruct catalog (version=%q mode=%s): %v", v, mode, err)
		return nil, &StorageError{Op: "reconstruct", Err: err}
	}

	filtered := s.filter.Apply(reconstructed)
	observability.RecordReconstruction(mode, time.Since(start).Seconds(), len(reconstructed), len(filtered))

	aggStart := time.Now()
	stats, err := s.aggregator.Aggregate(ctx, filtered)
	if err != nil {
		return nil, err
	}
	observability.RecordAggregation(time.Since(aggStart).Seconds())

	s.logger.Printf("Computed stats (version=%q mode=%s reconstructed=%d filtered=%d)",
		v, mode, len(reconstructed), len(filtered))

	return &domain.StatsResult{
		RequestedVersion: v,
		LiveVersion:      versions.LiveVersion(),
		Versions:         versions.All(),
		VehicleCount:     len(filtered),
		Stats:            stats,
	}, nil
}

// GetVehicle returns one vehicle with every version it has existed at.
//
// Without v, the Live snapshot is returned (nil if the vehicle only has
// history). With v, the Live row if v is the catalog live version or the Live
// row's own version, else the Historical row recorded at v.
func (s *Service) GetVehicle(ctx context.Context, identifier, v string) (*domain.VehicleDetail, error) {
	if strings.TrimSpace(identifier) == "" {
		observability.RecordVehicleRequest("invalid")
		return nil, &ValidationError{Field: "identifier", Value: identifier}
	}
	if v != "" {
		if err := version.Validate(v); err != nil {
			observability.RecordVehicleRequest("invalid")
			return nil, &ValidationError{Field: "version", Value: v, Err: err}
		}
	}

	detail, err := s.getVehicle(ctx, identifier, v)
	switch {
	case err == nil:
		observability.RecordVehicleRequest("ok")
	case errors.Is(err, ErrNotFound):
		observability.RecordVehicleRequest("not_found")
	default:
		observability.RecordVehicleRequest("error")
		s.logger.Printf("Failed to get vehicle %q (version=%q): %v", identifier, v, err)
	}
	return detail, err
}

func (s *Service) getVehicle(ctx context.Context, identifier, v string) (*domain.VehicleDetail, error) {
	versions, err := s.store.VersionsOf(ctx, identifier)
	if err != nil {
		return nil, &StorageError{Op: "versions of", Err: err}
	}
	if len(versions) == 0 {
		return nil, &NotFoundError{Identifier: identifier, Version: v}
	}
	version.Sort(versions)

	live, err := s.store.GetLive(ctx, identifier)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, &StorageError{Op: "get live", Err: err}
	}

	if v == "" || (live != nil && live.Version == v) {
		return &domain.VehicleDetail{Snapshot: live, IsLive: live != nil, Versions: versions}, nil
	}

	if live != nil {
		catalogLive, err := s.liveVersion(ctx)
		if err != nil {
			return nil, &StorageError{Op: "live versions", Err: err}
		}
		if v == catalogLive {
			return &domain.VehicleDetail{Snapshot: live, IsLive: true, Versions: versions}, nil
		}
	}

	hist, err := s.store.GetHistorical(ctx, identifier, v)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Identifier: identifier, Version: v}
		}
		return nil, &StorageError{Op: "get historical", Err: err}
	}
	return &domain.VehicleDetail{Snapshot: hist, Versions: versions}, nil
}

// liveVersion returns the greatest Live version in the store, or "" if there is none.
func (s *Service) liveVersion(ctx context.Context) (string, error) {
	live, err := s.store.LiveVersions(ctx)
	if err != nil {
		return "", err
	}
	latest, _ := version.Latest(live)
	return latest, nil
}

// InvalidateStats drops cached stats for v, or every cached result if v is empty.
// Cached results are not tied to store changes: after an append, call it with ""
// or wait for the cache TTL.
func (s *Service) InvalidateStats(v string) {
	if s.cache == nil {
		return
	}
	if v == "" {
		s.cache.InvalidateAll()
		return
	}
	s.cache.Invalidate(v)
}

// Versions returns the store's current version universe.
func (s *Service) Versions(ctx context.Context) (Versions, error) {
	versions, err := LoadVersions(ctx, s.store)
	if err != nil {
		return Versions{}, &StorageError{Op: "load versions", Err: err}
	}
	return versions, nil
}
