package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Options tune the connection pool. Zero values keep database/sql defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Connect opens a pgx-backed connection pool and verifies it with a ping
func Connect(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	const op = "postgres.Connect"

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	return db, nil
}

// RunMigrations applies the embedded migrations to the database at dsn
func RunMigrations(dsn string) error {
	const op = "postgres.RunMigrations"

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%s: failed to open migration source: %w", op, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}

// Open connects, migrates and returns a ready repository
func Open(ctx context.Context, dsn string, opts Options) (*Repository, error) {
	const op = "postgres.Open"

	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := Connect(ctx, dsn, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewRepository(db), nil
}

// migrateURL rewrites a postgres:// DSN to the scheme the pgx/v5 migrate driver registers
func migrateURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}
