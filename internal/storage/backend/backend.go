// Package backend opens the snapshot store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"vehicle-catalog-lab/internal/config"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/storage/clickhouse"
	"vehicle-catalog-lab/internal/storage/memory"
	"vehicle-catalog-lab/internal/storage/migrations"
	"vehicle-catalog-lab/internal/storage/postgres"
	"vehicle-catalog-lab/internal/storage/sqlite"
)

// Open connects to the configured backend and applies its migrations.
// The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config) (storage.SnapshotStore, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return memory.NewSnapshotStore(), nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return postgres.NewSnapshotStore(pool), nil

	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StoreClickhouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		return clickhouse.NewSnapshotStore(conn), nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
