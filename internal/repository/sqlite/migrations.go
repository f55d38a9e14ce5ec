package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// runMigrations applies the pending migrations found under migrations/ in
// fsys through db. The migrate instance is never closed because its
// database driver would close db with it.
func runMigrations(db *sql.DB, fsys fs.FS) error {
	const op = "sqlite.runMigrations"

	src, err := iofs.New(fsys, "migrations")
	if err != nil {
		return fmt.Errorf("%s: failed to open migration source: %w", op, err)
	}
	defer src.Close()

	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migration driver: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
