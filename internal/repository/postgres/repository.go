package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/repository"
)

const (
	uniqueViolationErrCode = "23505"

	codeConstraint = "urls_code_key"
	urlConstraint  = "urls_original_url_key"
)

type urlRecord struct {
	ID          int64     `db:"id"`
	Code        string    `db:"code"`
	OriginalURL string    `db:"original_url"`
	Visits      int64     `db:"visits"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *urlRecord) toDomain() *domain.URLRecord {
	return &domain.URLRecord{
		ID:          r.ID,
		Code:        r.Code,
		OriginalURL: r.OriginalURL,
		Visits:      r.Visits,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// Repository implements repository.URLRepository on PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open connection pool
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	const op = "postgres.Repository.FindByURL"

	rec := new(urlRecord)
	query := `SELECT id, code, original_url, visits, created_at
		FROM urls
		WHERE md5(original_url) = md5($1) AND original_url = $1`

	if err := r.db.GetContext(ctx, rec, query, originalURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to find url record: %w", op, err)
	}

	return rec.toDomain(), nil
}

func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	const op = "postgres.Repository.CodeExists"

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM urls WHERE code = $1)`

	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("%s: failed to check code: %w", op, err)
	}

	return exists, nil
}

func (r *Repository) CreateURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error) {
	const op = "postgres.Repository.CreateURL"

	rec := new(urlRecord)
	query := `INSERT INTO urls(code, original_url)
		VALUES ($1, $2)
		RETURNING id, code, original_url, visits, created_at`

	if err := r.db.GetContext(ctx, rec, query, code, originalURL); err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return nil, fmt.Errorf("%s: %w", op, mapped)
		}
		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.toDomain(), nil
}

func (r *Repository) GetURL(ctx context.Context, code string) (*domain.URLRecord, error) {
	const op = "postgres.Repository.GetURL"

	rec := new(urlRecord)
	query := `SELECT id, code, original_url, visits, created_at
		FROM urls
		WHERE code = $1`

	if err := r.db.GetContext(ctx, rec, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.toDomain(), nil
}

func (r *Repository) IncrementVisits(ctx context.Context, code string) (*domain.URLRecord, error) {
	const op = "postgres.Repository.IncrementVisits"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET visits = visits + 1
		WHERE code = $1
		RETURNING id, code, original_url, visits, created_at`

	if err := r.db.GetContext(ctx, rec, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to increment visits: %w", op, err)
	}

	return rec.toDomain(), nil
}

func (r *Repository) ListURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	const op = "postgres.Repository.ListURLs"

	var recs []urlRecord
	query := `SELECT id, code, original_url, visits, created_at
		FROM urls
		ORDER BY id DESC`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	records := make([]*domain.URLRecord, len(recs))
	for i := range recs {
		records[i] = recs[i].toDomain()
	}
	return records, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// mapConstraintError translates unique violations on the known constraints
// into domain errors and returns anything else unchanged
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationErrCode {
		return err
	}

	switch pgErr.ConstraintName {
	case codeConstraint:
		return domain.ErrDuplicateCode
	case urlConstraint:
		return domain.ErrDuplicateURL
	default:
		return err
	}
}

var _ repository.URLRepository = (*Repository)(nil)
