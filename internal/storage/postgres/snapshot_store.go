package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/observability"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

const (
	dialectPostgres = "postgres"
	tableSnapshots  = "vehicle_snapshots"
	databaseLabel   = "postgres"
)

// snapshotColumns is the scan order used by scanSnapshot.
var snapshotColumns = []any{
	"identifier", "version", "country", "vehicle_type",
	"value", "req_exp", "ge_cost",
	"is_premium", "is_pack", "on_marketplace",
}

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
	qb   goqu.DialectWrapper
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool, qb: goqu.Dialect(dialectPostgres)}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Append adds a snapshot, superseding the current row when newer.
// Returns ErrDuplicateKey if (identifier, version) exists.
func (s *SnapshotStore) Append(ctx context.Context, snap *domain.VehicleSnapshot) (err error) {
	if err := storage.ValidateSnapshot(snap); err != nil {
		return err
	}
	defer observability.ObserveDBQuery(databaseLabel, "append", time.Now(), &err)

	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		return appendTx(ctx, tx, snap)
	})
}

// AppendBulk appends in order inside one transaction. Fails entire batch on any error.
func (s *SnapshotStore) AppendBulk(ctx context.Context, snaps []*domain.VehicleSnapshot) (err error) {
	if len(snaps) == 0 {
		return nil
	}
	for _, snap := range snaps {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
	}
	defer observability.ObserveDBQuery(databaseLabel, "append_bulk", time.Now(), &err)

	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		for _, snap := range snaps {
			if err := appendTx(ctx, tx, snap); err != nil {
				return err
			}
		}
		return nil
	})
}

// appendTx inserts snap and moves the current flag if snap is the new greatest version.
func appendTx(ctx context.Context, tx pgx.Tx, snap *domain.VehicleSnapshot) error {
	var current string
	hasCurrent := true
	err := tx.QueryRow(ctx, `
		SELECT version FROM vehicle_snapshots
		WHERE identifier = $1 AND is_current
		FOR UPDATE
	`, snap.Identifier).Scan(&current)
	if err != nil {
		if !isNotFoundError(err) {
			return fmt.Errorf("select current snapshot: %w", err)
		}
		hasCurrent = false
	}

	if hasCurrent && current == snap.Version {
		return storage.ErrDuplicateKey
	}

	makeCurrent := !hasCurrent || version.Compare(snap.Version, current) > 0
	if makeCurrent && hasCurrent {
		_, err := tx.Exec(ctx, `
			UPDATE vehicle_snapshots SET is_current = FALSE
			WHERE identifier = $1 AND version = $2
		`, snap.Identifier, current)
		if err != nil {
			return fmt.Errorf("supersede snapshot: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO vehicle_snapshots (
			identifier, version, country, vehicle_type,
			value, req_exp, ge_cost,
			is_premium, is_pack, on_marketplace, is_current
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		snap.Identifier,
		snap.Version,
		snap.Country,
		string(snap.VehicleType),
		string(snap.Value),
		string(snap.ReqExp),
		string(snap.GECost),
		snap.IsPremium,
		snap.IsPack,
		snap.OnMarketplace,
		makeCurrent,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LiveVersions returns the distinct versions of Live rows.
func (s *SnapshotStore) LiveVersions(ctx context.Context) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "live_versions", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT DISTINCT version FROM vehicle_snapshots WHERE is_current`)
}

// HistoricalVersions returns the distinct versions of Historical rows.
func (s *SnapshotStore) HistoricalVersions(ctx context.Context) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "historical_versions", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT DISTINCT version FROM vehicle_snapshots WHERE NOT is_current`)
}

// Live returns every Live row, ordered by identifier.
func (s *SnapshotStore) Live(ctx context.Context) (_ []*domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "live", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(goqu.C("is_current").IsTrue()).
		Order(goqu.I("identifier").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build live query: %w", err)
	}
	return s.querySnapshots(ctx, query, args...)
}

// HistoricalIn returns every Historical row whose version is in versions.
func (s *SnapshotStore) HistoricalIn(ctx context.Context, versions []string) (_ []*domain.VehicleSnapshot, err error) {
	if len(versions) == 0 {
		return nil, nil
	}
	defer observability.ObserveDBQuery(databaseLabel, "historical_in", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(
			goqu.C("is_current").IsFalse(),
			goqu.C("version").In(versions),
		).
		Order(goqu.I("identifier").Asc(), goqu.I("version").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build historical query: %w", err)
	}
	return s.querySnapshots(ctx, query, args...)
}

// GetLive returns the Live row of an identifier. Returns ErrNotFound if none.
func (s *SnapshotStore) GetLive(ctx context.Context, identifier string) (_ *domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "get_live", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(goqu.C("identifier").Eq(identifier), goqu.C("is_current").IsTrue()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get live query: %w", err)
	}
	return s.querySnapshot(ctx, query, args...)
}

// GetHistorical returns the Historical row (identifier, version). Returns ErrNotFound if none.
func (s *SnapshotStore) GetHistorical(ctx context.Context, identifier, v string) (_ *domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "get_historical", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(
			goqu.C("identifier").Eq(identifier),
			goqu.C("version").Eq(v),
			goqu.C("is_current").IsFalse(),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get historical query: %w", err)
	}
	return s.querySnapshot(ctx, query, args...)
}

// VersionsOf returns every version of an identifier.
func (s *SnapshotStore) VersionsOf(ctx context.Context, identifier string) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "versions_of", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT version FROM vehicle_snapshots WHERE identifier = $1`, identifier)
}

// Close closes the underlying pool.
func (s *SnapshotStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *SnapshotStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
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
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *SnapshotStore) querySnapshots(ctx context.Context, query string, args ...any) ([]*domain.VehicleSnapshot, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

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

// scanSnapshot scans a single row in snapshotColumns order.
func scanSnapshot(row pgx.Row) (*domain.VehicleSnapshot, error) {
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
