// Package sqlite provides a SQLite-backed snapshot store for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/observability"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/storage/migrations"
	"vehicle-catalog-lab/internal/version"
)

const (
	tableSnapshots = "vehicle_snapshots"
	databaseLabel  = "sqlite"
)

var snapshotColumns = []any{
	"identifier", "version", "country", "vehicle_type",
	"value", "req_exp", "ge_cost",
	"is_premium", "is_pack", "on_marketplace",
}

// Store persists the snapshot log in SQLite.
type Store struct {
	sqlDB *sql.DB
	qb    goqu.DialectWrapper
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*Store)(nil)

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer connection keeps the current-flag transactions serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, qb: goqu.Dialect("sqlite3")}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append adds a snapshot, superseding the current row when newer.
func (s *Store) Append(ctx context.Context, snap *domain.VehicleSnapshot) error {
	return s.AppendBulk(ctx, []*domain.VehicleSnapshot{snap})
}

// AppendBulk appends in order inside one transaction.
func (s *Store) AppendBulk(ctx context.Context, snaps []*domain.VehicleSnapshot) (err error) {
	if len(snaps) == 0 {
		return nil
	}
	for _, snap := range snaps {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
	}
	defer observability.ObserveDBQuery(databaseLabel, "append_bulk", time.Now(), &err)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	for _, snap := range snaps {
		if err := appendTx(ctx, tx, snap); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func appendTx(ctx context.Context, tx *sql.Tx, snap *domain.VehicleSnapshot) error {
	var current string
	hasCurrent := true
	err := tx.QueryRowContext(ctx,
		`SELECT version FROM vehicle_snapshots WHERE identifier = ? AND is_current = 1`,
		snap.Identifier,
	).Scan(&current)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("select current snapshot: %w", err)
		}
		hasCurrent = false
	}

	makeCurrent := !hasCurrent || version.Compare(snap.Version, current) > 0
	if makeCurrent && hasCurrent {
		if _, err := tx.ExecContext(ctx,
			`UPDATE vehicle_snapshots SET is_current = 0 WHERE identifier = ? AND version = ?`,
			snap.Identifier, current,
		); err != nil {
			return fmt.Errorf("supersede snapshot: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO vehicle_snapshots (
		   identifier, version, country, vehicle_type,
		   value, req_exp, ge_cost,
		   is_premium, is_pack, on_marketplace,
		   is_current, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Identifier,
		snap.Version,
		snap.Country,
		string(snap.VehicleType),
		string(snap.Value),
		string(snap.ReqExp),
		string(snap.GECost),
		boolToInt(snap.IsPremium),
		boolToInt(snap.IsPack),
		boolToInt(snap.OnMarketplace),
		boolToInt(makeCurrent),
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LiveVersions returns the distinct versions of Live rows.
func (s *Store) LiveVersions(ctx context.Context) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "live_versions", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT DISTINCT version FROM vehicle_snapshots WHERE is_current = 1`)
}

// HistoricalVersions returns the distinct versions of Historical rows.
func (s *Store) HistoricalVersions(ctx context.Context) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "historical_versions", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT DISTINCT version FROM vehicle_snapshots WHERE is_current = 0`)
}

// Live returns every Live row, ordered by identifier.
func (s *Store) Live(ctx context.Context) (_ []*domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "live", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(goqu.C("is_current").Eq(1)).
		Order(goqu.I("identifier").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build live query: %w", err)
	}
	return s.querySnapshots(ctx, query, args...)
}

// HistoricalIn returns every Historical row whose version is in versions.
func (s *Store) HistoricalIn(ctx context.Context, versions []string) (_ []*domain.VehicleSnapshot, err error) {
	if len(versions) == 0 {
		return nil, nil
	}
	defer observability.ObserveDBQuery(databaseLabel, "historical_in", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(goqu.C("is_current").Eq(0), goqu.C("version").In(versions)).
		Order(goqu.I("identifier").Asc(), goqu.I("version").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build historical query: %w", err)
	}
	return s.querySnapshots(ctx, query, args...)
}

// GetLive returns the Live row of an identifier. Returns ErrNotFound if none.
func (s *Store) GetLive(ctx context.Context, identifier string) (_ *domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "get_live", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(goqu.C("identifier").Eq(identifier), goqu.C("is_current").Eq(1)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get live query: %w", err)
	}
	return s.querySnapshot(ctx, query, args...)
}

// GetHistorical returns the Historical row (identifier, version). Returns ErrNotFound if none.
func (s *Store) GetHistorical(ctx context.Context, identifier, v string) (_ *domain.VehicleSnapshot, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "get_historical", time.Now(), &err)

	query, args, err := s.qb.From(tableSnapshots).
		Select(snapshotColumns...).
		Where(
			goqu.C("identifier").Eq(identifier),
			goqu.C("version").Eq(v),
			goqu.C("is_current").Eq(0),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get historical query: %w", err)
	}
	return s.querySnapshot(ctx, query, args...)
}

// VersionsOf returns every version of an identifier.
func (s *Store) VersionsOf(ctx context.Context, identifier string) (_ []string, err error) {
	defer observability.ObserveDBQuery(databaseLabel, "versions_of", time.Now(), &err)
	return s.queryStrings(ctx, `SELECT version FROM vehicle_snapshots WHERE identifier = ?`, identifier)
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
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

func (s *Store) querySnapshot(ctx context.Context, query string, args ...any) (*domain.VehicleSnapshot, error) {
	snap, err := scanSnapshot(s.sqlDB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) querySnapshots(ctx context.Context, query string, args ...any) ([]*domain.VehicleSnapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*domain.VehicleSnapshot, error) {
	var (
		s                           domain.VehicleSnapshot
		vehicleType                 string
		value, reqExp, geCost       string
		isPremium, isPack, onMarket int64
	)
	if err := row.Scan(
		&s.Identifier,
		&s.Version,
		&s.Country,
		&vehicleType,
		&value,
		&reqExp,
		&geCost,
		&isPremium,
		&isPack,
		&onMarket,
	); err != nil {
		return nil, err
	}

	s.VehicleType = domain.VehicleType(vehicleType)
	s.Value = domain.Amount(value)
	s.ReqExp = domain.Amount(reqExp)
	s.GECost = domain.Amount(geCost)
	s.IsPremium = isPremium != 0
	s.IsPack = isPack != 0
	s.OnMarketplace = onMarket != 0
	return &s, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
