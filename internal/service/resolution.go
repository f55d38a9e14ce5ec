package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/metrics"
	"github.com/joshdurbin/shortlink/internal/repository"
)

// ResolutionService maps codes back to URLs. The visit increment and the
// returned URL come from the same store operation, so every successful
// resolve is counted exactly once.
type ResolutionService struct {
	repo    repository.URLRepository
	metrics *metrics.Metrics
}

// NewResolutionService creates a resolution service
func NewResolutionService(repo repository.URLRepository, m *metrics.Metrics) *ResolutionService {
	return &ResolutionService{
		repo:    repo,
		metrics: m,
	}
}

// Resolve returns the original URL for code and counts the visit
func (s *ResolutionService) Resolve(ctx context.Context, code string) (string, error) {
	if code == "" {
		s.metrics.ObserveResolve(metrics.ResultMiss)
		return "", domain.ErrNotFound
	}

	start := time.Now()
	record, err := s.repo.IncrementVisits(ctx, code)
	s.metrics.ObserveStoreOp("increment_visits", start)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.ObserveResolve(metrics.ResultMiss)
			return "", domain.ErrNotFound
		}
		s.metrics.ObserveResolve(metrics.ResultError)
		return "", fmt.Errorf("failed to resolve short code: %w", err)
	}

	s.metrics.ObserveResolve(metrics.ResultHit)
	return record.OriginalURL, nil
}

// Lookup retrieves a record without counting a visit
func (s *ResolutionService) Lookup(ctx context.Context, code string) (*domain.URLRecord, error) {
	defer s.metrics.ObserveStoreOp("get_url", time.Now())

	record, err := s.repo.GetURL(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get URL info: %w", err)
	}
	return record, nil
}

// List retrieves all records, newest first
func (s *ResolutionService) List(ctx context.Context) ([]*domain.URLRecord, error) {
	defer s.metrics.ObserveStoreOp("list_urls", time.Now())

	records, err := s.repo.ListURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get URLs from store: %w", err)
	}
	return records, nil
}
