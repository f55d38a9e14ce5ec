package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/shortlink/internal/domain"
)

// URLRepository is a mock implementation of repository.URLRepository
type URLRepository struct {
	mock.Mock
}

// FindByURL returns the record for an exact original URL
func (m *URLRepository) FindByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

// CodeExists checks if a short code is already taken
func (m *URLRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// CreateURL inserts a new record
func (m *URLRepository) CreateURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error) {
	args := m.Called(ctx, code, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

// GetURL retrieves a record by its short code
func (m *URLRepository) GetURL(ctx context.Context, code string) (*domain.URLRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

// IncrementVisits adds one visit and returns the updated record
func (m *URLRepository) IncrementVisits(ctx context.Context, code string) (*domain.URLRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

// ListURLs retrieves all records
func (m *URLRepository) ListURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.URLRecord), args.Error(1)
}

// Ping checks that the backing store is reachable
func (m *URLRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the repository connection
func (m *URLRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
