package storage

import (
	"context"

	"vehicle-catalog-lab/internal/domain"
)

// SnapshotReader provides read access to vehicle snapshots.
//
// Every backend is one append-only log keyed by (identifier, version) with a
// derived current index. Live is the current (greatest-version) row of every
// identifier; Historical is every other row.
type SnapshotReader interface {
	// LiveVersions returns the distinct versions of Live rows, unordered.
	LiveVersions(ctx context.Context) ([]string, error)

	// HistoricalVersions returns the distinct versions of Historical rows, unordered.
	HistoricalVersions(ctx context.Context) ([]string, error)

	// Live returns every Live row.
	Live(ctx context.Context) ([]*domain.VehicleSnapshot, error)

	// HistoricalIn returns every Historical row whose version is in versions.
	// An empty versions slice yields no rows.
	HistoricalIn(ctx context.Context, versions []string) ([]*domain.VehicleSnapshot, error)

	// GetLive returns the Live row of an identifier. Returns ErrNotFound if none.
	GetLive(ctx context.Context, identifier string) (*domain.VehicleSnapshot, error)

	// GetHistorical returns the Historical row (identifier, version). Returns ErrNotFound if none.
	GetHistorical(ctx context.Context, identifier, version string) (*domain.VehicleSnapshot, error)

	// VersionsOf returns every version (Live and Historical) of an identifier, unordered.
	VersionsOf(ctx context.Context, identifier string) ([]string, error)
}

// SnapshotWriter appends snapshots to the log.
type SnapshotWriter interface {
	// Append adds a snapshot. A version greater than the identifier's current one
	// supersedes it; a smaller one is recorded as Historical.
	// Returns ErrDuplicateKey if (identifier, version) exists, ErrInvalidInput on a
	// missing identifier or unparseable version.
	Append(ctx context.Context, s *domain.VehicleSnapshot) error

	// AppendBulk appends in order, atomically. Fails the entire batch on any error.
	AppendBulk(ctx context.Context, snapshots []*domain.VehicleSnapshot) error
}

// SnapshotStore is a readable and writable snapshot log.
type SnapshotStore interface {
	SnapshotReader
	SnapshotWriter

	// Close releases backend resources.
	Close() error
}
