package domain

import (
	"time"
)

// URLRecord is a stored mapping from a short code to the original URL
type URLRecord struct {
	ID          int64     `json:"id"`
	Code        string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Visits      int64     `json:"visits"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateURLRequest represents the request to create a short URL
type CreateURLRequest struct {
	URL string `json:"url" validate:"required"`
}

// CreateURLResponse represents the response when creating a short URL
type CreateURLResponse struct {
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse is the JSON body returned for failed API calls
type ErrorResponse struct {
	Error string `json:"error"`
}
