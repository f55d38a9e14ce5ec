package app

import (
	"context"
	"fmt"

	"github.com/joshdurbin/shortlink/internal/config"
	"github.com/joshdurbin/shortlink/internal/repository"
	"github.com/joshdurbin/shortlink/internal/repository/memory"
	"github.com/joshdurbin/shortlink/internal/repository/postgres"
	"github.com/joshdurbin/shortlink/internal/repository/redis"
	"github.com/joshdurbin/shortlink/internal/repository/sqlite"
)

// OpenStore opens the mapping store selected by cfg.Driver. The caller owns
// the returned repository and must close it.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (repository.URLRepository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		repo, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return repo, nil

	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.Postgres.DSN, postgres.Options{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return repo, nil

	case config.DriverRedis:
		repo, err := redis.Open(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return repo, nil

	case config.DriverMemory:
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}
