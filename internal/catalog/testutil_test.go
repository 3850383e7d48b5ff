package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/storage/memory"
)

func snap(id, v string) *domain.VehicleSnapshot {
	return &domain.VehicleSnapshot{
		Identifier:  id,
		Version:     v,
		Country:     "germany",
		VehicleType: domain.VehicleTypeMediumTank,
		Value:       domain.AmountOf(1000),
		ReqExp:      domain.AmountOf(100),
	}
}

func newStore(t *testing.T, snaps ...*domain.VehicleSnapshot) *memory.SnapshotStore {
	t.Helper()
	store := memory.NewSnapshotStore()
	if err := store.AppendBulk(context.Background(), snaps); err != nil {
		t.Fatalf("AppendBulk failed: %v", err)
	}
	return store
}

// countingReader counts reads and can be made to fail.
type countingReader struct {
	storage.SnapshotReader
	calls atomic.Int32
	err   error
}

var errStoreDown = errors.New("store down")

func (r *countingReader) hit() error {
	r.calls.Add(1)
	return r.err
}

func (r *countingReader) LiveVersions(ctx context.Context) ([]string, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.LiveVersions(ctx)
}

func (r *countingReader) HistoricalVersions(ctx context.Context) ([]string, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.HistoricalVersions(ctx)
}

func (r *countingReader) Live(ctx context.Context) ([]*domain.VehicleSnapshot, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.Live(ctx)
}

func (r *countingReader) HistoricalIn(ctx context.Context, versions []string) ([]*domain.VehicleSnapshot, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.HistoricalIn(ctx, versions)
}

func (r *countingReader) GetLive(ctx context.Context, id string) (*domain.VehicleSnapshot, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.GetLive(ctx, id)
}

func (r *countingReader) GetHistorical(ctx context.Context, id, v string) (*domain.VehicleSnapshot, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.GetHistorical(ctx, id, v)
}

func (r *countingReader) VersionsOf(ctx context.Context, id string) ([]string, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.SnapshotReader.VersionsOf(ctx, id)
}
