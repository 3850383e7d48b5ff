package postgres

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/storage"
)

func snapshot(id, v string, value int64) *domain.VehicleSnapshot {
	return &domain.VehicleSnapshot{
		Identifier:  id,
		Version:     v,
		Country:     "germany",
		VehicleType: domain.VehicleTypeMediumTank,
		Value:       domain.AmountOf(value),
		ReqExp:      domain.AmountOf(value / 2),
	}
}

func TestSnapshotStore_AppendAndSupersede(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, snapshot("pz_iv_h", "1.9", 100)))
	require.NoError(t, store.Append(ctx, snapshot("pz_iv_h", "1.10", 200)))

	live, err := store.GetLive(ctx, "pz_iv_h")
	require.NoError(t, err)
	assert.Equal(t, "1.10", live.Version)
	assert.Equal(t, int64(200), live.Value.Int64())
	assert.Equal(t, domain.VehicleTypeMediumTank, live.VehicleType)

	hist, err := store.GetHistorical(ctx, "pz_iv_h", "1.9")
	require.NoError(t, err)
	assert.Equal(t, int64(100), hist.Value.Int64())

	_, err = store.GetHistorical(ctx, "pz_iv_h", "1.10")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, snapshot("a", "1.0", 1)))
	assert.ErrorIs(t, store.Append(ctx, snapshot("a", "1.0", 1)), storage.ErrDuplicateKey)

	// Backfilled historical duplicate
	require.NoError(t, store.Append(ctx, snapshot("a", "2.0", 1)))
	assert.ErrorIs(t, store.Append(ctx, snapshot("a", "1.0", 1)), storage.ErrDuplicateKey)
}

func TestSnapshotStore_AppendBulkRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, snapshot("a", "1.0", 1)))

	err := store.AppendBulk(ctx, []*domain.VehicleSnapshot{
		snapshot("b", "1.0", 1),
		snapshot("a", "1.0", 1),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetLive(ctx, "b")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_VersionsAndHistoricalIn(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	require.NoError(t, store.AppendBulk(ctx, []*domain.VehicleSnapshot{
		snapshot("a", "1.0", 1),
		snapshot("a", "1.1", 2),
		snapshot("a", "1.2", 3),
		snapshot("b", "1.1", 4),
		snapshot("c", "0.9", 5),
		snapshot("c", "0.8", 6), // backfill
	}))

	lv, err := store.LiveVersions(ctx)
	require.NoError(t, err)
	sort.Strings(lv)
	assert.Equal(t, []string{"0.9", "1.1", "1.2"}, lv)

	hv, err := store.HistoricalVersions(ctx)
	require.NoError(t, err)
	sort.Strings(hv)
	assert.Equal(t, []string{"0.8", "1.0", "1.1"}, hv)

	rows, err := store.HistoricalIn(ctx, []string{"1.1", "0.8"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Identifier)
	assert.Equal(t, "c", rows[1].Identifier)

	live, err := store.Live(ctx)
	require.NoError(t, err)
	assert.Len(t, live, 3)

	versions, err := store.VersionsOf(ctx, "c")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0.8", "0.9"}, versions)
}
