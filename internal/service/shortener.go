package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshdurbin/shortlink/internal/metrics"
	"github.com/joshdurbin/shortlink/internal/repository"
	"github.com/joshdurbin/shortlink/internal/shortener"
)

// Option configures the service built by NewURLShortener
type Option func(*options)

type options struct {
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// WithMaxAttempts bounds how many codes are tried per new URL
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithMetrics records outcomes in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger for collision and exhaustion events
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// urlShortener implements URLShortener by combining the shortening and
// resolution services over one repository
type urlShortener struct {
	*ShorteningService
	*ResolutionService

	repo      repository.URLRepository
	generator shortener.Generator
}

// NewURLShortener creates a new URL shortener service
func NewURLShortener(repo repository.URLRepository, generator shortener.Generator, opts ...Option) URLShortener {
	o := options{
		maxAttempts: shortener.DefaultConfig().MaxAttempts,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New(nil)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	return &urlShortener{
		ShorteningService: NewShorteningService(repo, generator, o.maxAttempts, o.metrics, o.logger),
		ResolutionService: NewResolutionService(repo, o.metrics),
		repo:              repo,
		generator:         generator,
	}
}

// Ping checks that the mapping store is reachable
func (s *urlShortener) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Close releases the generator
func (s *urlShortener) Close() error {
	if err := s.generator.Close(); err != nil {
		return fmt.Errorf("failed to close generator: %w", err)
	}
	return nil
}

// Ensure urlShortener implements URLShortener interface
var _ URLShortener = (*urlShortener)(nil)
