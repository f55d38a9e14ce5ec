package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/repository"
)

const recordColumns = "id, code, original_url, visits, created_at"

// Repository implements repository.URLRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the database at databasePath and applies
// pending migrations
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dataSourceName(databasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if databasePath == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db, migrationsFS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// dataSourceName appends the connection options to databasePath, which may
// already carry a query string (file: URIs). busy_timeout is per connection,
// so it has to go through the DSN to reach every connection in the pool.
func dataSourceName(databasePath string) string {
	const options = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

	sep := "?"
	if strings.Contains(databasePath, "?") {
		sep = "&"
	}
	return databasePath + sep + options
}

// FindByURL returns the record for an exact original URL
func (r *Repository) FindByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM urls WHERE original_url = ?", originalURL)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}
	return record, nil
}

// CodeExists checks if a short code is already taken
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM urls WHERE code = ?)", code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// CreateURL inserts a new record with zero visits
func (r *Repository) CreateURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO urls (code, original_url, visits, created_at) VALUES (?, ?, 0, ?) RETURNING "+recordColumns,
		code, originalURL, time.Now().UTC().UnixNano())

	record, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create URL: %w", mapConstraintError(err))
	}
	return record, nil
}

// GetURL retrieves a record by its short code
func (r *Repository) GetURL(ctx context.Context, code string) (*domain.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM urls WHERE code = ?", code)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get URL: %w", err)
	}
	return record, nil
}

// IncrementVisits adds one visit and returns the updated record in a single statement
func (r *Repository) IncrementVisits(ctx context.Context, code string) (*domain.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE urls SET visits = visits + 1 WHERE code = ? RETURNING "+recordColumns, code)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to increment visits: %w", err)
	}
	return record, nil
}

// ListURLs retrieves all records, newest first
func (r *Repository) ListURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM urls ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	records := []*domain.URLRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	return records, nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.URLRecord, error) {
	var (
		record    domain.URLRecord
		createdAt int64
	)
	if err := s.Scan(&record.ID, &record.Code, &record.OriginalURL, &record.Visits, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = time.Unix(0, createdAt).UTC()
	return &record, nil
}

// mapConstraintError translates unique constraint violations into domain errors
func mapConstraintError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}

	switch msg := sqliteErr.Error(); {
	case strings.Contains(msg, "urls.code"):
		return domain.ErrDuplicateCode
	case strings.Contains(msg, "urls.original_url"):
		return domain.ErrDuplicateURL
	default:
		return err
	}
}

// Ensure Repository implements the interface
var _ repository.URLRepository = (*Repository)(nil)
