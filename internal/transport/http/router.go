package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the API, redirect, health and metrics routes
func NewRouter(h *Handler, logger *httplog.Logger, gatherer prometheus.Gatherer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares(logger, allowedOrigins)...)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/urls", func(r chi.Router) {
		r.With(middleware.AllowContentType("application/json")).Post("/", h.CreateURL)
		r.Get("/", h.ListURLs)
		r.Get("/{code}", h.GetURL)
	})

	r.Get("/{code}", h.Redirect)

	return r
}
