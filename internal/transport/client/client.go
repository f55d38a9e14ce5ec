package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshdurbin/shortlink/internal/domain"
)

// Client represents an HTTP client for the URL shortener API
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new URL shortener client
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Resolve reports the redirect target instead of visiting it
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// CreateURL creates a short URL
func (c *Client) CreateURL(ctx context.Context, originalURL string) (*domain.CreateURLResponse, error) {
	jsonData, err := json.Marshal(domain.CreateURLRequest{URL: originalURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/urls", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result domain.CreateURLResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetURL retrieves information about a short URL without counting a visit
func (c *Client) GetURL(ctx context.Context, shortCode string) (*domain.URLRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/urls/"+url.PathEscape(shortCode), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var record domain.URLRecord
	if err := c.do(req, &record); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("short code '%s': %w", shortCode, domain.ErrNotFound)
		}
		return nil, err
	}
	return &record, nil
}

// ListURLs retrieves all short URLs, newest first
func (c *Client) ListURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/urls", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var records []*domain.URLRecord
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Resolve follows a short code like a browser would, counting a visit, and
// returns the redirect target
func (c *Client) Resolve(ctx context.Context, shortCode string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/"+url.PathEscape(shortCode), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound, http.StatusMovedPermanently, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		location := resp.Header.Get("Location")
		if location == "" {
			return "", errors.New("redirect without Location header")
		}
		return location, nil
	case http.StatusNotFound:
		return "", fmt.Errorf("short code '%s': %w", shortCode, domain.ErrNotFound)
	default:
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}
}

// do sends req and decodes a 200 JSON body into out. Error bodies are
// surfaced in the returned error; 404 wraps domain.ErrNotFound.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr domain.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrNotFound
		}
		if apiErr.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
