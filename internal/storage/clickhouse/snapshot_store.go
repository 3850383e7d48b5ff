package clickhouse

import (
	"context"
	"fmt"
	"time"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/observability"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

const databaseLabel = "clickhouse"

const selectColumns = `
	identifier, version, country, vehicle_type,
	value, req_exp, ge_cost,
	is_premium, is_pack, on_marketplace`

// liveOrder sorts rows greatest version first, matching version.Compare:
// numeric key, then no qualifier before any qualifier, then qualifier bytes.
// The raw version only separates rows that compare equal.
const liveOrder = `version_key DESC, qualifier != '' DESC, qualifier DESC, version DESC`

// currentRows selects the (identifier, version) of every Live row.
const currentRows = `
	SELECT identifier, version FROM vehicle_snapshots
	ORDER BY identifier, ` + liveOrder + `
	LIMIT 1 BY identifier`

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
//
// MergeTree does not enforce keys, so duplicates are rejected by explicit
// checks before insert and the Live index is derived at query time.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Append adds a snapshot. Returns ErrDuplicateKey if (identifier, version) exists.
func (s *SnapshotStore) Append(ctx context.Context, snap *domain.VehicleSnapshot) error {
	return s.AppendBulk(ctx, []*domain.VehicleSnapshot{snap})
}

// AppendBulk inserts all snapshots in a single batch. Fails entire batch on duplicate.
func (s *SnapshotStore) AppendBulk(ctx context.Context, snaps []*domain.VehicleSnapshot) (err error) {
	if len(snaps) == 0 {
		return nil
	}

	seen := make(map[storage.Key]struct{}, len(snaps))
	for _, snap := range snaps {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
		k := storage.SnapshotKey(snap.Identifier, snap.Version)
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}
	defer observability.ObserveDBQuery(databaseLabel, "append_bulk", time.Now(), &err)

	for _, snap := range snaps {
		exists, err := s.exists(ctx, snap.Identifier, snap.Version)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO vehicle_snapshots (
			identifier, version, version_key, qualifier, country, vehicle_type,
			value, req_exp, ge_cost,
			is_premium, is_pack, on_marketplace
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		parsed, _ := version.Parse(snap.Version)
		err = batch.Append(
			snap.Identifier,
			snap.Version,
			version.Key(snap.Version),
			parsed.Qualifier,
			snap.Country,
			string(snap.VehicleType),
			string(snap.Value),
			string(snap.ReqExp),
			string(snap.GECost),
			snap.IsPremium,
			snap.IsPack,
			snap.OnMarketplace,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// LiveVersions returns the distinct versions of Live rows.
func (s *SnapshotStore) LiveVersions(ctx context.Context) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "live_versions", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT DISTINCT version FROM (`+currentRows+`)`)
}

// HistoricalVersions returns the distinct versions of Historical rows.
func (s *SnapshotStore) HistoricalVersions(ctx context.Context) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "historical_versions", time.Now(), &err)
	return s.queryStrings(ctx, `
		SELECT DISTINCT version FROM vehicle_snapshots
		WHERE (identifier, version) NOT IN (`+currentRows+`)`)
}

// Live returns every Live row, ordered by identifier.
func (s *SnapshotStore) Live(ctx context.Context) (_ []*domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "live", time.Now(), &err)
	return s.querySnapshots(ctx, `
		SELECT `+selectColumns+`
		FROM vehicle_snapshots
		ORDER BY identifier, `+liveOrder+`
		LIMIT 1 BY identifier`)
}

// HistoricalIn returns every Historical row whose version is in versions.
func (s *SnapshotStore) HistoricalIn(ctx context.Context, versions []string) (_ []*domain.VehicleSnapshot, err error) {
	if len(versions) == 0 {
		return nil, nil
	}
	defer observability.ObserveDBQuery(databaseLabel, "historical_in", time.Now(), &err)

	return s.querySnapshots(ctx, `
		SELECT `+selectColumns+`
		FROM vehicle_snapshots
		WHERE has(?, version)
		  AND (identifier, version) NOT IN (`+currentRows+`)
		ORDER BY identifier, version_key, qualifier != '', qualifier, version`, versions)
}

// GetLive returns the Live row of an identifier. Returns ErrNotFound if none.
func (s *SnapshotStore) GetLive(ctx context.Context, identifier string) (_ *domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "get_live", time.Now(), &err)

	return s.querySnapshot(ctx, `
		SELECT `+selectColumns+`
		FROM vehicle_snapshots
		WHERE identifier = ?
		ORDER BY `+liveOrder+`
		LIMIT 1`, identifier)
}

// GetHistorical returns the Historical row (identifier, version). Returns ErrNotFound if none.
func (s *SnapshotStore) GetHistorical(ctx context.Context, identifier, v string) (_ *domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "get_historical", time.Now(), &err)

	live, err := s.GetLive(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if live.Version == v {
		return nil, storage.ErrNotFound
	}

	return s.querySnapshot(ctx, `
		SELECT `+selectColumns+`
		FROM vehicle_snapshots
		WHERE identifier = ? AND version = ?
		LIMIT 1`, identifier, v)
}

// VersionsOf returns every version of an identifier.
func (s *SnapshotStore) VersionsOf(ctx context.Context, identifier string) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "versions_of", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT version FROM vehicle_snapshots WHERE identifier = ?`, identifier)
}

// Close closes the connection.
func (s *SnapshotStore) Close() error {
	return s.conn.Close()
}

// exists checks if a snapshot with the given key exists.
func (s *SnapshotStore) exists(ctx context.Context, identifier, v string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count(*) FROM vehicle_snapshots
		WHERE identifier = ? AND version = ?
	`, identifier, v).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SnapshotStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version rows: %w", err)
	}
	return out, nil
}

func (s *SnapshotStore) querySnapshot(ctx context.Context, query string, args ...any) (*domain.VehicleSnapshot, error) {
	snap, err := scanSnapshot(s.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *SnapshotStore) querySnapshots(ctx context.Context, query string, args ...any) ([]*domain.VehicleSnapshot, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// chRows is the subset of driver.Rows used by scanSnapshots.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// chRow is satisfied by both driver.Row and driver.Rows.
type chRow interface {
	Scan(dest ...interface{}) error
}

func scanSnapshots(rows chRows) ([]*domain.VehicleSnapshot, error) {
	var snaps []*domain.VehicleSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

func scanSnapshot(row chRow) (*domain.VehicleSnapshot, error) {
	var (
		s                     domain.VehicleSnapshot
		vehicleType           string
		value, reqExp, geCost string
	)

	err := row.Scan(
		&s.Identifier,
		&s.Version,
		&s.Country,
		&vehicleType,
		&value,
		&reqExp,
		&geCost,
		&s.IsPremium,
		&s.IsPack,
		&s.OnMarketplace,
	)
	if err != nil {
		return nil, err
	}

	s.VehicleType = domain.VehicleType(vehicleType)
	s.Value = domain.Amount(value)
	s.ReqExp = domain.Amount(reqExp)
	s.GECost = domain.Amount(geCost)
	return &s, nil
}
