package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/service/mocks"
)

func newTestRouter(svc *mocks.URLShortener) http.Handler {
	logger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})
	return NewRouter(NewHandler(svc, "http://localhost:8080/"), logger, prometheus.NewRegistry(), []string{"*"})
}

func testRecord() *domain.URLRecord {
	return &domain.URLRecord{
		ID:          1,
		Code:        "Ab3dE9",
		OriginalURL: "https://example.com",
		CreatedAt:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandler_CreateURL(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*mocks.URLShortener)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "successful creation",
			requestBody: domain.CreateURLRequest{URL: "https://example.com"},
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Shorten", mock.Anything, "https://example.com").Return(testRecord(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"short_url":"http://localhost:8080/Ab3dE9"`,
		},
		{
			name:           "empty URL",
			requestBody:    domain.CreateURLRequest{URL: ""},
			setupMocks:     func(mockService *mocks.URLShortener) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "url is required",
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			setupMocks:     func(mockService *mocks.URLShortener) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid JSON",
		},
		{
			name:           "empty body",
			setupMocks:     func(mockService *mocks.URLShortener) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "request body is empty",
		},
		{
			name:        "rejected URL",
			requestBody: domain.CreateURLRequest{URL: "ftp://example.com"},
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Shorten", mock.Anything, "ftp://example.com").
					Return(nil, domain.ErrInvalidURL)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid URL",
		},
		{
			name:        "code space exhausted",
			requestBody: domain.CreateURLRequest{URL: "https://example.com"},
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Shorten", mock.Anything, "https://example.com").
					Return(nil, domain.ErrCodeSpaceExhausted)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.URLShortener{}
			tt.setupMocks(mockService)

			var body bytes.Buffer
			if tt.requestBody != nil {
				if jsonStr, ok := tt.requestBody.(string); ok {
					body.WriteString(jsonStr)
				} else {
					require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/urls", &body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			newTestRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateURL_RequiresJSONContentType(t *testing.T) {
	mockService := &mocks.URLShortener{}

	req := httptest.NewRequest(http.MethodPost, "/api/urls", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	newTestRouter(mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	mockService.AssertNotCalled(t, "Shorten", mock.Anything, mock.Anything)
}

func TestHandler_GetURL(t *testing.T) {
	tests := []struct {
		name           string
		shortCode      string
		setupMocks     func(*mocks.URLShortener)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "successful retrieval",
			shortCode: "Ab3dE9",
			setupMocks: func(mockService *mocks.URLShortener) {
				rec := testRecord()
				rec.Visits = 5
				mockService.On("Lookup", mock.Anything, "Ab3dE9").Return(rec, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"visits":5`,
		},
		{
			name:      "short code not found",
			shortCode: "zzzzzz",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Lookup", mock.Anything, "zzzzzz").Return(nil, domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "short code not found",
		},
		{
			name:      "store failure",
			shortCode: "Ab3dE9",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Lookup", mock.Anything, "Ab3dE9").Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.URLShortener{}
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/urls/"+tt.shortCode, nil)
			w := httptest.NewRecorder()

			newTestRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Redirect(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMocks     func(*mocks.URLShortener)
		expectedStatus int
		expectedHeader string
		expectedBody   string
	}{
		{
			name: "successful redirect",
			path: "/Ab3dE9",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Resolve", mock.Anything, "Ab3dE9").Return("https://example.com", nil)
			},
			expectedStatus: http.StatusFound,
			expectedHeader: "https://example.com",
		},
		{
			name: "short code not found",
			path: "/zzzzzz",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Resolve", mock.Anything, "zzzzzz").Return("", domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "invalid code",
		},
		{
			name: "store failure",
			path: "/Ab3dE9",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("Resolve", mock.Anything, "Ab3dE9").Return("", assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "root path",
			path:           "/",
			setupMocks:     func(mockService *mocks.URLShortener) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "nested path",
			path:           "/Ab3dE9/extra",
			setupMocks:     func(mockService *mocks.URLShortener) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.URLShortener{}
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			newTestRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedHeader != "" {
				assert.Equal(t, tt.expectedHeader, w.Header().Get("Location"))
			}
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ListURLs(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(*mocks.URLShortener)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "successful list with URLs",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("List", mock.Anything).
					Return([]*domain.URLRecord{
						{ID: 2, Code: "def456", OriginalURL: "https://google.com"},
						{ID: 1, Code: "abc123", OriginalURL: "https://example.com"},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name: "empty list",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("List", mock.Anything).Return([]*domain.URLRecord(nil), nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name: "service error",
			setupMocks: func(mockService *mocks.URLShortener) {
				mockService.On("List", mock.Anything).Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.URLShortener{}
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/urls", nil)
			w := httptest.NewRecorder()

			newTestRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if w.Code == http.StatusOK {
				assert.NotContains(t, w.Body.String(), "null")

				var urls []*domain.URLRecord
				require.NoError(t, json.NewDecoder(w.Body).Decode(&urls))
				assert.Len(t, urls, tt.expectedCount)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Health(t *testing.T) {
	t.Run("store reachable", func(t *testing.T) {
		mockService := &mocks.URLShortener{}
		mockService.On("Ping", mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		newTestRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("store unreachable", func(t *testing.T) {
		mockService := &mocks.URLShortener{}
		mockService.On("Ping", mock.Anything).Return(assert.AnError)

		w := httptest.NewRecorder()
		newTestRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandler_Metrics(t *testing.T) {
	mockService := &mocks.URLShortener{}

	w := httptest.NewRecorder()
	newTestRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}
