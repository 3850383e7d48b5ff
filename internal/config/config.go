// Package config loads catalog service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory     = "memory"
	StorePostgres   = "postgres"
	StoreSQLite     = "sqlite"
	StoreClickhouse = "clickhouse"
)

// Live policies.
const (
	LivePolicyHistoricalOnly = "historical-only"
	LivePolicyIncludeLive    = "include-live"
)

// Config holds every environment-driven setting.
type Config struct {
	Store         string `env:"CATALOG_STORE" envDefault:"memory"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	ClickhouseDSN string `env:"CLICKHOUSE_DSN"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"catalog.db"`

	ExcludedIDs  []string `env:"CATALOG_EXCLUDED_IDS" envSeparator:","`
	RewardSuffix string   `env:"CATALOG_REWARD_SUFFIX" envDefault:"_killstreak"`
	LivePolicy   string   `env:"CATALOG_LIVE_POLICY" envDefault:"historical-only"`

	ParallelAggregation bool `env:"CATALOG_PARALLEL_AGGREGATION"`
	AggregationWorkers  int  `env:"CATALOG_AGGREGATION_WORKERS" envDefault:"4"`

	StatsCacheTTL  time.Duration `env:"CATALOG_STATS_CACHE_TTL" envDefault:"5m"`
	StatsCacheSize int           `env:"CATALOG_STATS_CACHE_SIZE" envDefault:"64"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	UseFixtures bool   `env:"CATALOG_USE_FIXTURES"`
}

// ParseEnv parses environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file, then parses and validates Config.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.LivePolicy = strings.ToLower(strings.TrimSpace(c.LivePolicy))

	ids := c.ExcludedIDs[:0]
	for _, id := range c.ExcludedIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	c.ExcludedIDs = ids
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for store %q", c.Store)
		}
	case StoreClickhouse:
		if c.ClickhouseDSN == "" {
			return fmt.Errorf("CLICKHOUSE_DSN is required for store %q", c.Store)
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for store %q", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.LivePolicy {
	case LivePolicyHistoricalOnly, LivePolicyIncludeLive:
	default:
		return fmt.Errorf("unknown live policy %q", c.LivePolicy)
	}

	if c.AggregationWorkers < 1 {
		return fmt.Errorf("CATALOG_AGGREGATION_WORKERS must be positive, got %d", c.AggregationWorkers)
	}
	if c.StatsCacheTTL < 0 || c.StatsCacheSize < 0 {
		return fmt.Errorf("stats cache ttl and size must not be negative")
	}
	return nil
}
