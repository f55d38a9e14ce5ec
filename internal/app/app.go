package app

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/joshdurbin/shortlink/internal/config"
	"github.com/joshdurbin/shortlink/internal/metrics"
	"github.com/joshdurbin/shortlink/internal/service"
	"github.com/joshdurbin/shortlink/internal/shortener"
	httpTransport "github.com/joshdurbin/shortlink/internal/transport/http"
)

// NewLogger builds the process logger from the logging configuration
func NewLogger(cfg config.LoggingConfig, w io.Writer) (*httplog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	return httplog.NewLogger("shortlink", httplog.Options{
		LogLevel: level,
		JSON:     cfg.JSON,
		Concise:  !cfg.JSON,
		Writer:   w,
	}), nil
}

// Run listens on the configured port and serves until ctx is cancelled
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	l, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("%s: failed to listen: %w", op, err)
	}

	return Serve(ctx, cfg, logger, l)
}

// Serve wires store, generator, services and HTTP server, then serves on l
// until ctx is cancelled. The store is closed before Serve returns.
func Serve(ctx context.Context, cfg *config.Config, logger *httplog.Logger, l net.Listener) error {
	const op = "app.Serve"

	repo, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		l.Close()
		return fmt.Errorf("%s: failed to open store: %w", op, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close store", "err", err)
		}
	}()

	generator, err := shortener.NewGenerator(cfg.Shortener)
	if err != nil {
		l.Close()
		return fmt.Errorf("%s: failed to create shortener generator: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	urlShortener := service.NewURLShortener(repo, generator,
		service.WithMaxAttempts(cfg.Shortener.MaxAttempts),
		service.WithMetrics(metrics.New(reg)),
		service.WithLogger(logger.Logger),
	)
	defer func() {
		if err := urlShortener.Close(); err != nil {
			logger.Error("failed to close shortener", "err", err)
		}
	}()

	logger.Info("shortener ready",
		"store", cfg.Store.Driver,
		"generator", generator.Type(),
		"code_length", cfg.Shortener.Length)

	server := httpTransport.NewServer(urlShortener, cfg.Server, logger, reg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(l); err != nil {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}
		return nil
	})

	return g.Wait()
}
