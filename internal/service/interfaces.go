package service

import (
	"context"

	"github.com/joshdurbin/shortlink/internal/domain"
)

// URLShortener defines the interface for URL shortening operations
type URLShortener interface {
	// Shorten returns the record for originalURL, creating it with a fresh
	// code on first submission. It returns domain.ErrInvalidURL, without
	// touching the store, when originalURL is empty, is not absolute, has a
	// scheme other than http or https, or has no host.
	Shorten(ctx context.Context, originalURL string) (*domain.URLRecord, error)

	// Resolve returns the original URL for a code and counts the visit
	Resolve(ctx context.Context, code string) (string, error)

	// Lookup retrieves a record without counting a visit
	Lookup(ctx context.Context, code string) (*domain.URLRecord, error)

	// List retrieves all records, newest first
	List(ctx context.Context) ([]*domain.URLRecord, error)

	// Ping checks that the mapping store is reachable
	Ping(ctx context.Context) error

	// Close releases the generator; the repository belongs to the caller
	Close() error
}
