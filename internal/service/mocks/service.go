package mocks

import (
	"context"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/stretchr/testify/mock"
)

// URLShortener is a mock implementation of service.URLShortener
type URLShortener struct {
	mock.Mock
}

// Shorten returns the record for a URL
func (m *URLShortener) Shorten(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

// Resolve returns the original URL for a code
func (m *URLShortener) Resolve(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

// Lookup retrieves a record without counting a visit
func (m *URLShortener) Lookup(ctx context.Context, code string) (*domain.URLRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

// List retrieves all records
func (m *URLShortener) List(ctx context.Context) ([]*domain.URLRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.URLRecord), args.Error(1)
}

// Ping checks the store
func (m *URLShortener) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close releases resources
func (m *URLShortener) Close() error {
	args := m.Called()
	return args.Error(0)
}
