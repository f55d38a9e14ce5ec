package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/service"
)

const healthTimeout = 2 * time.Second

// Handler holds the HTTP handlers for the URL shortener
type Handler struct {
	shortener service.URLShortener
	serverURL string
	validate  *validator.Validate
}

// NewHandler creates a new HTTP handler
func NewHandler(shortener service.URLShortener, serverURL string) *Handler {
	return &Handler{
		shortener: shortener,
		serverURL: strings.TrimRight(serverURL, "/"),
		validate:  newValidate(),
	}
}

// newValidate reports struct fields by their JSON names
func newValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// CreateURL handles POST /api/urls
func (h *Handler) CreateURL(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http.CreateURL"

	var req domain.CreateURLRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "request body is empty")
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	record, err := h.shortener.Shorten(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, domain.CreateURLResponse{
		ShortCode:   record.Code,
		ShortURL:    h.serverURL + "/" + record.Code,
		OriginalURL: record.OriginalURL,
		CreatedAt:   record.CreatedAt,
	})
}

// GetURL handles GET /api/urls/{code}
func (h *Handler) GetURL(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http.GetURL"

	record, err := h.shortener.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, domain.ErrNotFound.Error())
			return
		}

		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, record)
}

// ListURLs handles GET /api/urls
func (h *Handler) ListURLs(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http.ListURLs"

	records, err := h.shortener.List(r.Context())
	if err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if records == nil {
		records = []*domain.URLRecord{}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, records)
}

// Redirect handles GET /{code}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http.Redirect"

	originalURL, err := h.shortener.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "invalid code", http.StatusNotFound)
			return
		}

		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http.Health"

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.shortener.Ping(ctx); err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		render.Status(r, http.StatusServiceUnavailable)
		render.PlainText(w, r, "unavailable")
		return
	}

	render.Status(r, http.StatusOK)
	render.PlainText(w, r, "ok")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, domain.ErrorResponse{Error: msg})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
}
