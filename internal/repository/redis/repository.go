// Package redis stores URL records in Redis. Each record is a hash; a second
// hash indexes codes by original URL and a sorted set keeps insertion order.
// Inserts and visit increments run as Lua scripts, so each one is a single
// atomic server-side operation.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/repository"
)

// DefaultKeyPrefix keeps every key in one cluster hash slot, which the
// multi-key scripts require
const DefaultKeyPrefix = "{shortlink}:"

const (
	insertDuplicateCode = -1
	insertDuplicateURL  = -2
)

// KEYS: record, url index, id counter, order set
// ARGV: code, original url, created at (unix nanos)
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return -1
end
if redis.call('HEXISTS', KEYS[2], ARGV[2]) == 1 then
	return -2
end
local id = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], 'id', id, 'code', ARGV[1], 'original_url', ARGV[2], 'visits', 0, 'created_at', ARGV[3])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[1])
redis.call('ZADD', KEYS[4], id, ARGV[1])
return id
`)

// KEYS: record
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HINCRBY', KEYS[1], 'visits', 1)
return redis.call('HMGET', KEYS[1], 'id', 'code', 'original_url', 'visits', 'created_at')
`)

type urlHash struct {
	ID          int64  `redis:"id"`
	Code        string `redis:"code"`
	OriginalURL string `redis:"original_url"`
	Visits      int64  `redis:"visits"`
	CreatedAt   int64  `redis:"created_at"`
}

func (h *urlHash) toDomain() *domain.URLRecord {
	return &domain.URLRecord{
		ID:          h.ID,
		Code:        h.Code,
		OriginalURL: h.OriginalURL,
		Visits:      h.Visits,
		CreatedAt:   time.Unix(0, h.CreatedAt).UTC(),
	}
}

// Repository implements repository.URLRepository on Redis
type Repository struct {
	client redis.UniversalClient
	prefix string
}

// New wraps a connected client. An empty prefix selects DefaultKeyPrefix.
func New(client redis.UniversalClient, prefix string) *Repository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repository{
		client: client,
		prefix: prefix,
	}
}

// ValidateKeyPrefix checks that prefix carries a non-empty {hash tag}, so a
// cluster maps every key of the store to the same slot. Empty selects
// DefaultKeyPrefix and is accepted.
func ValidateKeyPrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	open := strings.IndexByte(prefix, '{')
	if open < 0 {
		return fmt.Errorf("key prefix %q must contain a {hash tag}", prefix)
	}
	// Redis hashes the first {...} only, and ignores an empty one
	end := strings.IndexByte(prefix[open+1:], '}')
	if end <= 0 {
		return fmt.Errorf("key prefix %q must contain a non-empty {hash tag}", prefix)
	}
	return nil
}

// Open parses a redis:// URL, connects and verifies the connection
func Open(ctx context.Context, redisURL, prefix string) (*Repository, error) {
	if err := ValidateKeyPrefix(prefix); err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return New(client, prefix), nil
}

func (r *Repository) recordKey(code string) string { return r.prefix + "url:" + code }
func (r *Repository) urlIndexKey() string          { return r.prefix + "codes_by_url" }
func (r *Repository) idKey() string                { return r.prefix + "next_id" }
func (r *Repository) orderKey() string             { return r.prefix + "order" }

// FindByURL returns the record for an exact original URL
func (r *Repository) FindByURL(ctx context.Context, originalURL string) (*domain.URLRecord, error) {
	code, err := r.client.HGet(ctx, r.urlIndexKey(), originalURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}
	return r.GetURL(ctx, code)
}

// CodeExists checks if a short code is already taken
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := r.client.Exists(ctx, r.recordKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return n > 0, nil
}

// CreateURL inserts a new record with zero visits
func (r *Repository) CreateURL(ctx context.Context, code, originalURL string) (*domain.URLRecord, error) {
	createdAt := time.Now().UTC()

	id, err := insertScript.Run(ctx, r.client,
		[]string{r.recordKey(code), r.urlIndexKey(), r.idKey(), r.orderKey()},
		code, originalURL, createdAt.UnixNano(),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}

	switch id {
	case insertDuplicateCode:
		return nil, fmt.Errorf("failed to create URL: %w", domain.ErrDuplicateCode)
	case insertDuplicateURL:
		return nil, fmt.Errorf("failed to create URL: %w", domain.ErrDuplicateURL)
	}

	return &domain.URLRecord{
		ID:          id,
		Code:        code,
		OriginalURL: originalURL,
		Visits:      0,
		CreatedAt:   time.Unix(0, createdAt.UnixNano()).UTC(),
	}, nil
}

// GetURL retrieves a record by its short code
func (r *Repository) GetURL(ctx context.Context, code string) (*domain.URLRecord, error) {
	cmd := r.client.HGetAll(ctx, r.recordKey(code))
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("failed to get URL: %w", err)
	}
	if len(cmd.Val()) == 0 {
		return nil, domain.ErrNotFound
	}

	var h urlHash
	if err := cmd.Scan(&h); err != nil {
		return nil, fmt.Errorf("failed to decode URL: %w", err)
	}
	return h.toDomain(), nil
}

// IncrementVisits adds one visit and returns the updated record
func (r *Repository) IncrementVisits(ctx context.Context, code string) (*domain.URLRecord, error) {
	values, err := incrementScript.Run(ctx, r.client, []string{r.recordKey(code)}).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to increment visits: %w", err)
	}

	record, err := parseFields(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode URL: %w", err)
	}
	return record, nil
}

// ListURLs retrieves all records, newest first
func (r *Repository) ListURLs(ctx context.Context) ([]*domain.URLRecord, error) {
	codes, err := r.client.ZRevRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(codes))
	for i, code := range codes {
		cmds[i] = pipe.HGetAll(ctx, r.recordKey(code))
	}
	if len(codes) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to list URLs: %w", err)
		}
	}

	records := make([]*domain.URLRecord, 0, len(codes))
	for _, cmd := range cmds {
		var h urlHash
		if err := cmd.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to decode URL: %w", err)
		}
		records = append(records, h.toDomain())
	}
	return records, nil
}

// Ping checks the server connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client
func (r *Repository) Close() error {
	return r.client.Close()
}

// parseFields decodes the HMGET reply of the increment script
func parseFields(values []interface{}) (*domain.URLRecord, error) {
	if len(values) != 5 {
		return nil, fmt.Errorf("expected 5 fields, got %d", len(values))
	}

	fields := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %d has unexpected type %T", i, v)
		}
		fields[i] = s
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	visits, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid visits: %w", err)
	}
	createdAt, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}

	return &domain.URLRecord{
		ID:          id,
		Code:        fields[1],
		OriginalURL: fields[2],
		Visits:      visits,
		CreatedAt:   time.Unix(0, createdAt).UTC(),
	}, nil
}

// Ensure Repository implements the interface
var _ repository.URLRepository = (*Repository)(nil)
