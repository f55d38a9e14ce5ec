package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/repository"
)

// Repository implements repository.URLRepository using in-memory maps.
// Every operation runs inside one critical section, which gives the same
// atomicity as the database-backed stores.
type Repository struct {
	mutex  sync.RWMutex
	byCode map[string]*domain.URLRecord
	byURL  map[string]string
	lastID int64
	closed bool
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		byCode: make(map[string]*domain.URLRecord),
		byURL:  make(map[string]string),
	}
}

// FindByURL returns the record for an exact original URL
func (r *Repository) FindByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	code, exists := r.byURL[originalURL]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return copyRecord(r.byCode[code]), nil
}

// CodeExists checks if a short code is already taken
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if err := r.usable(ctx); err != nil {
		return false, err
	}

	_, exists := r.byCode[code]
	return exists, nil
}

// CreateURL inserts a new record with zero visits
func (r *Repository) CreateURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	if _, exists := r.byCode[code]; exists {
		return nil, fmt.Errorf("failed to create URL: %w", domain.ErrDuplicateCode)
	}
	if _, exists := r.byURL[originalURL]; exists {
		return nil, fmt.Errorf("failed to create URL: %w", domain.ErrDuplicateURL)
	}

	r.lastID++
	record := &domain.URLRecord{
		ID:          r.lastID,
		Code:        code,
		OriginalURL: originalURL,
		Visits:      0,
		CreatedAt:   time.Now().UTC(),
	}
	r.byCode[code] = record
	r.byURL[originalURL] = code

	return copyRecord(record), nil
}

// GetURL retrieves a record by its short code
func (r *Repository) GetURL(ctx context.Context, code string) (*domain.URLRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	record, exists := r.byCode[code]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return copyRecord(record), nil
}

// IncrementVisits adds one visit and returns the updated record
func (r *Repository) IncrementVisits(ctx context.Context, code string) (*domain.URLRecord, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	record, exists := r.byCode[code]
	if !exists {
		return nil, domain.ErrNotFound
	}
	record.Visits++
	return copyRecord(record), nil
}

// ListURLs retrieves all records, newest first
func (r *Repository) ListURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	records := make([]*domain.URLRecord, 0, len(r.byCode))
	for _, record := range r.byCode {
		records = append(records, copyRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// Ping reports whether the repository is still open
func (r *Repository) Ping(ctx context.Context) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.usable(ctx)
}

// Close marks the repository closed; later calls fail
func (r *Repository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.closed = true
	return nil
}

// usable must be called with the mutex held
func (r *Repository) usable(ctx context.Context) error {
	if r.closed {
		return fmt.Errorf("repository is closed")
	}
	return ctx.Err()
}

// copyRecord returns a copy to prevent external modification
func copyRecord(record *domain.URLRecord) *domain.URLRecord {
	c := *record
	return &c
}

// Ensure Repository implements the interface
var _ repository.URLRepository = (*Repository)(nil)
