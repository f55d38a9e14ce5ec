package repository

import (
	"context"

	"github.com/joshdurbin/shortlink/internal/domain"
)

// URLRepository defines the interface for URL mapping storage.
//
// Implementations enforce uniqueness of both the short code and the original
// URL at the storage layer, so concurrent inserts cannot both succeed.
type URLRepository interface {
	// FindByURL returns the record for an exact original URL, or domain.ErrNotFound
	FindByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error)

	// CodeExists checks if a short code is already taken
	CodeExists(ctx context.Context, code string) (bool, error)

	// CreateURL inserts a new record with zero visits. It returns
	// domain.ErrDuplicateCode or domain.ErrDuplicateURL on a uniqueness conflict.
	CreateURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error)

	// GetURL retrieves a record by its short code without touching the visit count
	GetURL(ctx context.Context, code string) (*domain.URLRecord, error)

	// IncrementVisits atomically adds one visit and returns the updated record,
	// or domain.ErrNotFound without mutating anything
	IncrementVisits(ctx context.Context, code string) (*domain.URLRecord, error)

	// ListURLs retrieves all records, newest first
	ListURLs(ctx context.Context) ([]*domain.URLRecord, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	// Close closes the repository connection
	Close() error
}
