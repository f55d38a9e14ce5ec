package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
)

// middlewares returns the chain applied to every route, outermost first
func middlewares(logger *httplog.Logger, allowedOrigins []string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Accept"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.RealIP,
		httplog.RequestLogger(logger),
		middleware.Recoverer,
	}
}
