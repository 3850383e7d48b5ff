package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-catalog-lab/internal/cache"
	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/metrics"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

var quietLogger = log.New(io.Discard, "", 0)

func newService(reader storage.SnapshotReader, opts Options) *Service {
	opts.Store = reader
	if opts.Logger == nil {
		opts.Logger = quietLogger
	}
	return NewService(opts)
}

func TestGetStats_EndToEnd(t *testing.T) {
	a := &domain.VehicleSnapshot{
		Identifier: "A", Version: "1.0", Country: "usa", VehicleType: domain.VehicleTypeFighter,
		Value: domain.AmountOf(1000), GECost: domain.AmountOf(50), IsPremium: true,
	}
	b := &domain.VehicleSnapshot{
		Identifier: "B", Version: "1.0", Country: "usa", VehicleType: domain.VehicleTypeFighter,
		Value: domain.AmountOf(2000), ReqExp: domain.AmountOf(500),
	}
	svc := newService(newStore(t, a, b), Options{})

	result, err := svc.GetStats(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.TotalPremiumVehicles)
	assert.Equal(t, 1, result.Stats.TotalTechTreeVehicles)
	assert.Equal(t, int64(2000), result.Stats.TotalSLRequired)
	assert.Equal(t, int64(500), result.Stats.TotalRPRequired)
	assert.Equal(t, int64(50), result.Stats.TotalGERequired)
	assert.Equal(t, 2, result.VehicleCount)
	assert.Equal(t, "1.0", result.LiveVersion)
	assert.Equal(t, []string{"1.0"}, result.Versions)
}

func TestGetStats_InvalidVersionNeverReachesStorage(t *testing.T) {
	reader := &countingReader{SnapshotReader: newStore(t, snap("a", "1.0"))}
	svc := newService(reader, Options{})

	for _, v := range []string{"abc", "1", "1.2.3.4.5", "1.x", " 1.2"} {
		_, err := svc.GetStats(context.Background(), v)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, v)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, version.ErrInvalid)
		assert.Equal(t, v, verr.Value)
	}
	assert.Zero(t, reader.calls.Load())
}

func TestGetStats_VersionsAreAlwaysComplete(t *testing.T) {
	svc := newService(newStore(t,
		snap("a", "1.2"), snap("a", "1.9"), snap("a", "1.10"),
		snap("b", "1.2"),
	), Options{})

	result, err := svc.GetStats(context.Background(), "1.2")
	require.NoError(t, err)

	assert.Equal(t, "1.2", result.RequestedVersion)
	assert.Equal(t, "1.10", result.LiveVersion)
	assert.Equal(t, []string{"1.2", "1.9", "1.10"}, result.Versions)
	assert.Equal(t, 1, result.VehicleCount) // only a@1.2 is historical at 1.2
}

func TestGetStats_AppliesExclusions(t *testing.T) {
	svc := newService(newStore(t,
		snap("tiger", "1.0"),
		snap("tiger_killstreak", "1.0"),
		snap("event_tank", "1.0"),
	), Options{Filter: NewExclusionFilter([]string{"event_tank"}, "")})

	result, err := svc.GetStats(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.VehicleCount)
	assert.Equal(t, int64(1000), result.Stats.TotalSLRequired)
}

func TestGetStats_EmptyCatalogIsValid(t *testing.T) {
	svc := newService(newStore(t), Options{})

	result, err := svc.GetStats(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, result.VehicleCount)
	assert.Zero(t, result.Stats.TotalSLRequired)
	assert.Empty(t, result.LiveVersion)
}

func TestGetStats_StorageError(t *testing.T) {
	reader := &countingReader{SnapshotReader: newStore(t), err: errStoreDown}
	svc := newService(reader, Options{})

	_, err := svc.GetStats(context.Background(), "")

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "load versions", serr.Op)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGetStats_Cache(t *testing.T) {
	reader := &countingReader{SnapshotReader: newStore(t, snap("a", "1.0"), snap("a", "1.1"))}
	statsCache := cache.New[string, *domain.StatsResult](time.Minute, 8)
	svc := newService(reader, Options{
		Cache:      statsCache,
		Aggregator: metrics.NewAggregator(metrics.Options{Parallel: true, Workers: 2}),
	})
	ctx := context.Background()

	first, err := svc.GetStats(ctx, "1.0")
	require.NoError(t, err)
	calls := reader.calls.Load()

	second, err := svc.GetStats(ctx, "1.0")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, calls, reader.calls.Load(), "cache hit must not read the store")

	svc.InvalidateStats("1.0")
	_, err = svc.GetStats(ctx, "1.0")
	require.NoError(t, err)
	assert.Greater(t, reader.calls.Load(), calls)

	_, err = svc.GetStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, statsCache.Len())
	svc.InvalidateStats("")
	assert.Equal(t, 0, statsCache.Len())
}

func TestGetVehicle_NotFound(t *testing.T) {
	svc := newService(newStore(t, snap("a", "1.0")), Options{})

	_, err := svc.GetVehicle(context.Background(), "ghost-id", "")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "ghost-id", nf.Identifier)
}

func TestGetVehicle_Live(t *testing.T) {
	svc := newService(newStore(t, snap("a", "1.10"), snap("a", "1.9"), snap("a", "1.2")), Options{})

	detail, err := svc.GetVehicle(context.Background(), "a", "")
	require.NoError(t, err)

	require.NotNil(t, detail.Snapshot)
	assert.True(t, detail.IsLive)
	assert.Equal(t, "1.10", detail.Snapshot.Version)
	assert.Equal(t, []string{"1.2", "1.9", "1.10"}, detail.Versions)
}

func TestGetVehicle_AtVersion(t *testing.T) {
	svc := newService(newStore(t, snap("a", "1.0"), snap("a", "1.1")), Options{})
	ctx := context.Background()

	detail, err := svc.GetVehicle(ctx, "a", "1.1")
	require.NoError(t, err)
	assert.True(t, detail.IsLive)
	assert.Equal(t, "1.1", detail.Snapshot.Version)

	detail, err = svc.GetVehicle(ctx, "a", "1.0")
	require.NoError(t, err)
	assert.False(t, detail.IsLive)
	assert.Equal(t, "1.0", detail.Snapshot.Version)
	assert.Equal(t, []string{"1.0", "1.1"}, detail.Versions)

	_, err = svc.GetVehicle(ctx, "a", "1.5")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetVehicle_UntouchedAtCatalogLiveVersion(t *testing.T) {
	svc := newService(newStore(t, snap("old", "1.0"), snap("new", "1.0"), snap("new", "1.1")), Options{})
	ctx := context.Background()

	result, err := svc.GetStats(ctx, "1.1")
	require.NoError(t, err)
	require.Equal(t, "1.1", result.LiveVersion)
	require.Equal(t, 2, result.VehicleCount)

	// "old" last changed at 1.0 but is part of the 1.1 catalog.
	detail, err := svc.GetVehicle(ctx, "old", "1.1")
	require.NoError(t, err)
	require.NotNil(t, detail.Snapshot)
	assert.True(t, detail.IsLive)
	assert.Equal(t, "1.0", detail.Snapshot.Version)
	assert.Equal(t, []string{"1.0"}, detail.Versions)

	// Its own live version still resolves to the live row.
	detail, err = svc.GetVehicle(ctx, "old", "1.0")
	require.NoError(t, err)
	assert.True(t, detail.IsLive)

	// Any other version is looked up in history only.
	_, err = svc.GetVehicle(ctx, "old", "1.0.5")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetVehicle_Validation(t *testing.T) {
	reader := &countingReader{SnapshotReader: newStore(t)}
	svc := newService(reader, Options{})

	_, err := svc.GetVehicle(context.Background(), "a", "abc")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetVehicle(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, reader.calls.Load())
}

func TestGetVehicle_StorageError(t *testing.T) {
	reader := &countingReader{SnapshotReader: newStore(t), err: errStoreDown}
	svc := newService(reader, Options{})

	_, err := svc.GetVehicle(context.Background(), "a", "")
	assert.True(t, errors.Is(err, errStoreDown))
	assert.False(t, errors.Is(err, ErrNotFound))
}
