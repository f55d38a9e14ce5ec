package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joshdurbin/shortlink/internal/domain"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
	out    io.Writer
}

// NewCommands creates a new Commands instance printing to out
func NewCommands(client *Client, out io.Writer) *Commands {
	return &Commands{
		client: client,
		out:    out,
	}
}

// Create creates a short URL and displays the result
func (c *Commands) Create(ctx context.Context, originalURL string) error {
	result, err := c.client.CreateURL(ctx, originalURL)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Short URL created:\n")
	fmt.Fprintf(c.out, "Short Code: %s\n", result.ShortCode)
	fmt.Fprintf(c.out, "Short URL: %s\n", result.ShortURL)
	fmt.Fprintf(c.out, "Original URL: %s\n", result.OriginalURL)
	fmt.Fprintf(c.out, "Created At: %s\n", result.CreatedAt.Format(time.RFC3339))

	return nil
}

// Get retrieves and displays information about a short URL
func (c *Commands) Get(ctx context.Context, shortCode string) error {
	record, err := c.client.GetURL(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintf(c.out, "Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Fprintf(c.out, "URL Information:\n")
	fmt.Fprintf(c.out, "ID: %d\n", record.ID)
	fmt.Fprintf(c.out, "Short Code: %s\n", record.Code)
	fmt.Fprintf(c.out, "Original URL: %s\n", record.OriginalURL)
	fmt.Fprintf(c.out, "Created At: %s\n", record.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(c.out, "Visits: %d\n", record.Visits)

	return nil
}

// Resolve prints the target a short code redirects to
func (c *Commands) Resolve(ctx context.Context, shortCode string) error {
	target, err := c.client.Resolve(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintf(c.out, "Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Fprintln(c.out, target)
	return nil
}

// List displays all short URLs in a table format
func (c *Commands) List(ctx context.Context) error {
	records, err := c.client.ListURLs(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(c.out, "No URLs found")
		return nil
	}

	fmt.Fprintf(c.out, "%-6s %-12s %-50s %-20s %s\n", "ID", "Short Code", "Original URL", "Created At", "Visits")
	fmt.Fprintln(c.out, strings.Repeat("-", 100))

	for _, record := range records {
		originalURL := record.OriginalURL
		if len(originalURL) > 50 {
			originalURL = originalURL[:47] + "..."
		}

		fmt.Fprintf(c.out, "%-6d %-12s %-50s %-20s %d\n",
			record.ID,
			record.Code,
			originalURL,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
			record.Visits,
		)
	}

	return nil
}
