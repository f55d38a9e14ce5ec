package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/metrics"
	"github.com/joshdurbin/shortlink/internal/repository"
	"github.com/joshdurbin/shortlink/internal/shortener"
)

// ShorteningService turns URLs into codes. Repeated submissions of the same
// URL return the existing record; fresh codes are retried on collision up to
// maxAttempts times.
type ShorteningService struct {
	repo        repository.URLRepository
	generator   shortener.Generator
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewShorteningService creates a shortening service
func NewShorteningService(repo repository.URLRepository, generator shortener.Generator, maxAttempts int, m *metrics.Metrics, logger *slog.Logger) *ShorteningService {
	return &ShorteningService{
		repo:        repo,
		generator:   generator,
		maxAttempts: maxAttempts,
		metrics:     m,
		logger:      logger,
	}
}

// Shorten returns the record for originalURL, creating it if needed.
// Inputs rejected by validateURL yield domain.ErrInvalidURL.
func (s *ShorteningService) Shorten(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	if err := validateURL(originalURL); err != nil {
		return nil, err
	}

	existing, err := s.findByURL(ctx, originalURL)
	if err == nil {
		s.metrics.ObserveShorten(metrics.ResultDeduplicated)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.metrics.ObserveShorten(metrics.ResultError)
		return nil, fmt.Errorf("failed to look up URL: %w", err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generator.GenerateShortCode(ctx)
		if err != nil {
			s.metrics.ObserveShorten(metrics.ResultError)
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		// Cheap skip of known collisions; the insert below is what actually
		// guarantees uniqueness
		taken, err := s.codeExists(ctx, code)
		if err != nil {
			s.metrics.ObserveShorten(metrics.ResultError)
			return nil, fmt.Errorf("failed to check short code: %w", err)
		}
		if taken {
			s.collision(code, attempt)
			continue
		}

		record, err := s.createURL(ctx, code, originalURL)
		switch {
		case err == nil:
			s.metrics.ObserveShorten(metrics.ResultCreated)
			return record, nil

		case errors.Is(err, domain.ErrDuplicateCode):
			s.collision(code, attempt)
			continue

		case errors.Is(err, domain.ErrDuplicateURL):
			// A concurrent request stored the same URL first
			winner, err := s.findByURL(ctx, originalURL)
			if err != nil {
				s.metrics.ObserveShorten(metrics.ResultError)
				return nil, fmt.Errorf("failed to load concurrently created URL: %w", err)
			}
			s.metrics.ObserveShorten(metrics.ResultDeduplicated)
			return winner, nil

		default:
			s.metrics.ObserveShorten(metrics.ResultError)
			return nil, fmt.Errorf("failed to create URL: %w", err)
		}
	}

	s.metrics.ObserveShorten(metrics.ResultError)
	s.logger.Error("short code allocation exhausted",
		slog.Int("attempts", s.maxAttempts),
		slog.String("generator", s.generator.Type()))
	return nil, fmt.Errorf("%w after %d attempts", domain.ErrCodeSpaceExhausted, s.maxAttempts)
}

func (s *ShorteningService) collision(code string, attempt int) {
	s.metrics.ObserveCollision()
	s.logger.Debug("short code collision",
		slog.String("code", code),
		slog.Int("attempt", attempt))
}

func (s *ShorteningService) findByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	defer s.metrics.ObserveStoreOp("find_by_url", time.Now())
	return s.repo.FindByURL(ctx, originalURL)
}

func (s *ShorteningService) codeExists(ctx context.Context, code string) (bool, error) {
	defer s.metrics.ObserveStoreOp("code_exists", time.Now())
	return s.repo.CodeExists(ctx, code)
}

func (s *ShorteningService) createURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error) {
	defer s.metrics.ObserveStoreOp("create_url", time.Now())
	return s.repo.CreateURL(ctx, code, originalURL)
}

// validateURL accepts absolute http and https URLs only
func validateURL(originalURL string) error {
	if originalURL == "" {
		return fmt.Errorf("%w: URL is required", domain.ErrInvalidURL)
	}

	parsedURL, err := url.ParseRequestURI(originalURL)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%w: only HTTP and HTTPS are supported", domain.ErrInvalidURL)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}

	return nil
}
