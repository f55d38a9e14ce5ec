package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/shortlink/internal/domain"
)

// newTestCommands serves handler and returns commands printing into the buffer
func newTestCommands(t *testing.T, handler http.HandlerFunc) (*Commands, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var out bytes.Buffer
	return NewCommands(NewClient(server.URL), &out), &out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestNewCommands(t *testing.T) {
	client := NewClient("http://localhost:8080")
	var out bytes.Buffer
	commands := NewCommands(client, &out)

	assert.Equal(t, client, commands.client)
	assert.Equal(t, &out, commands.out)
}

func TestCommands_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, domain.CreateURLResponse{
				ShortCode:   "Ab3dE9",
				ShortURL:    "http://localhost:8080/Ab3dE9",
				OriginalURL: "https://example.com",
				CreatedAt:   time.Now(),
			})
		})

		require.NoError(t, commands.Create(context.Background(), "https://example.com"))

		output := out.String()
		assert.Contains(t, output, "Short URL created:")
		assert.Contains(t, output, "Short Code: Ab3dE9")
		assert.Contains(t, output, "Short URL: http://localhost:8080/Ab3dE9")
		assert.Contains(t, output, "Original URL: https://example.com")
		assert.Contains(t, output, "Created At:")
	})

	t.Run("creation error", func(t *testing.T) {
		commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		assert.Error(t, commands.Create(context.Background(), "invalid-url"))
		assert.Empty(t, out.String())
	})
}

func TestCommands_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, domain.URLRecord{
				ID:          3,
				Code:        "Ab3dE9",
				OriginalURL: "https://example.com",
				Visits:      7,
				CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			})
		})

		require.NoError(t, commands.Get(context.Background(), "Ab3dE9"))

		output := out.String()
		assert.Contains(t, output, "URL Information:")
		assert.Contains(t, output, "ID: 3")
		assert.Contains(t, output, "Short Code: Ab3dE9")
		assert.Contains(t, output, "Created At: 2024-05-01T12:00:00Z")
		assert.Contains(t, output, "Visits: 7")
	})

	t.Run("not found is reported, not returned", func(t *testing.T) {
		commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		require.NoError(t, commands.Get(context.Background(), "zzzzzz"))
		assert.Equal(t, "Short code 'zzzzzz' not found\n", out.String())
	})

	t.Run("server error", func(t *testing.T) {
		commands, _ := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		assert.Error(t, commands.Get(context.Background(), "Ab3dE9"))
	})
}

func TestCommands_Resolve(t *testing.T) {
	commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Ab3dE9" {
			http.Redirect(w, r, "https://example.com/a", http.StatusFound)
			return
		}
		http.Error(w, "invalid code", http.StatusNotFound)
	})

	require.NoError(t, commands.Resolve(context.Background(), "Ab3dE9"))
	require.NoError(t, commands.Resolve(context.Background(), "zzzzzz"))

	assert.Equal(t, "https://example.com/a\nShort code 'zzzzzz' not found\n", out.String())
}

func TestCommands_List(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		longURL := "https://example.com/" + strings.Repeat("x", 80)
		commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []*domain.URLRecord{
				{ID: 2, Code: "def456", OriginalURL: longURL, CreatedAt: time.Now()},
				{ID: 1, Code: "abc123", OriginalURL: "https://example.com", Visits: 5, CreatedAt: time.Now()},
			})
		})

		require.NoError(t, commands.List(context.Background()))

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "Short Code")
		assert.Contains(t, lines[0], "Visits")
		assert.Contains(t, lines[2], "def456")
		assert.Contains(t, lines[2], "...")
		assert.NotContains(t, lines[2], longURL)
		assert.Contains(t, lines[3], "abc123")
		assert.True(t, strings.HasSuffix(lines[3], " 5"))
	})

	t.Run("empty", func(t *testing.T) {
		commands, out := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []*domain.URLRecord{})
		})

		require.NoError(t, commands.List(context.Background()))
		assert.Equal(t, "No URLs found\n", out.String())
	})

	t.Run("server error", func(t *testing.T) {
		commands, _ := newTestCommands(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		assert.Error(t, commands.List(context.Background()))
	})
}
