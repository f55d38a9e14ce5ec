// Package storetest holds behaviour tests every repository.URLRepository
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/joshdurbin/shortlink/internal/domain"
	"github.com/joshdurbin/shortlink/internal/repository"
)

// Factory returns a fresh, empty repository. Cleanup is registered on t.
type Factory func(t *testing.T) repository.URLRepository

// Run executes the conformance tests against repositories built by newRepo
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateURL", func(t *testing.T) { testCreateURL(t, newRepo(t)) })
	t.Run("CreateURL_DuplicateCode", func(t *testing.T) { testCreateURLDuplicateCode(t, newRepo(t)) })
	t.Run("CreateURL_DuplicateURL", func(t *testing.T) { testCreateURLDuplicateURL(t, newRepo(t)) })
	t.Run("CreateURL_IncreasingIDs", func(t *testing.T) { testIncreasingIDs(t, newRepo(t)) })
	t.Run("FindByURL", func(t *testing.T) { testFindByURL(t, newRepo(t)) })
	t.Run("CodeExists", func(t *testing.T) { testCodeExists(t, newRepo(t)) })
	t.Run("GetURL", func(t *testing.T) { testGetURL(t, newRepo(t)) })
	t.Run("IncrementVisits", func(t *testing.T) { testIncrementVisits(t, newRepo(t)) })
	t.Run("IncrementVisits_NotFound", func(t *testing.T) { testIncrementVisitsNotFound(t, newRepo(t)) })
	t.Run("IncrementVisits_Concurrent", func(t *testing.T) { testIncrementVisitsConcurrent(t, newRepo(t)) })
	t.Run("CreateURL_ConcurrentSameCode", func(t *testing.T) { testConcurrentSameCode(t, newRepo(t)) })
	t.Run("CreateURL_ConcurrentSameURL", func(t *testing.T) { testConcurrentSameURL(t, newRepo(t)) })
	t.Run("ListURLs", func(t *testing.T) { testListURLs(t, newRepo(t)) })
	t.Run("Ping", func(t *testing.T) { assert.NoError(t, newRepo(t).Ping(context.Background())) })
}

func testCreateURL(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	record, err := repo.CreateURL(ctx, "Ab3dE9", "https://example.com/a")
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Equal(t, "Ab3dE9", record.Code)
	assert.Equal(t, "https://example.com/a", record.OriginalURL)
	assert.Equal(t, int64(0), record.Visits)
	assert.WithinDuration(t, time.Now(), record.CreatedAt, time.Minute)
}

func testCreateURLDuplicateCode(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	_, err := repo.CreateURL(ctx, "dup001", "https://example.com/first")
	require.NoError(t, err)

	_, err = repo.CreateURL(ctx, "dup001", "https://example.com/second")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	record, err := repo.GetURL(ctx, "dup001")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/first", record.OriginalURL)

	_, err = repo.FindByURL(ctx, "https://example.com/second")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCreateURLDuplicateURL(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	_, err := repo.CreateURL(ctx, "first1", "https://example.com/same")
	require.NoError(t, err)

	_, err = repo.CreateURL(ctx, "secnd2", "https://example.com/same")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateURL)

	exists, err := repo.CodeExists(ctx, "secnd2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func testIncreasingIDs(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		record, err := repo.CreateURL(ctx, fmt.Sprintf("id%04d", i), fmt.Sprintf("https://example.com/%d", i))
		require.NoError(t, err)
		assert.Greater(t, record.ID, lastID)
		lastID = record.ID
	}
}

func testFindByURL(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	_, err := repo.FindByURL(ctx, "https://example.com/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := repo.CreateURL(ctx, "find01", "https://example.com/find")
	require.NoError(t, err)

	found, err := repo.FindByURL(ctx, "https://example.com/find")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "find01", found.Code)

	// exact match only
	_, err = repo.FindByURL(ctx, "https://example.com/find/")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCodeExists(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	exists, err := repo.CodeExists(ctx, "exist1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.CreateURL(ctx, "exist1", "https://example.com/exists")
	require.NoError(t, err)

	exists, err = repo.CodeExists(ctx, "exist1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func testGetURL(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	_, err := repo.GetURL(ctx, "zzzzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := repo.CreateURL(ctx, "get001", "https://example.com/get")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		record, err := repo.GetURL(ctx, "get001")
		require.NoError(t, err)
		assert.Equal(t, created.ID, record.ID)
		assert.Equal(t, created.OriginalURL, record.OriginalURL)
		assert.Equal(t, int64(0), record.Visits)
		assert.WithinDuration(t, created.CreatedAt, record.CreatedAt, time.Second)
	}
}

func testIncrementVisits(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	_, err := repo.CreateURL(ctx, "Ab3dE9", "https://example.com/a")
	require.NoError(t, err)

	record, err := repo.IncrementVisits(ctx, "Ab3dE9")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", record.OriginalURL)
	assert.Equal(t, int64(1), record.Visits)

	record, err = repo.IncrementVisits(ctx, "Ab3dE9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), record.Visits)

	stored, err := repo.GetURL(ctx, "Ab3dE9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Visits)
}

func testIncrementVisitsNotFound(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	_, err := repo.CreateURL(ctx, "keep01", "https://example.com/keep")
	require.NoError(t, err)

	_, err = repo.IncrementVisits(ctx, "zzzzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	records, err := repo.ListURLs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(0), records[0].Visits)

	exists, err := repo.CodeExists(ctx, "zzzzzz")
	require.NoError(t, err)
	assert.False(t, exists)
}

func testIncrementVisitsConcurrent(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()
	const workers = 20
	const perWorker = 10

	_, err := repo.CreateURL(ctx, "conc01", "https://example.com/concurrent")
	require.NoError(t, err)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if _, err := repo.IncrementVisits(gctx, "conc01"); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	record, err := repo.GetURL(ctx, "conc01")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), record.Visits)
}

func testConcurrentSameCode(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()
	const workers = 10

	var succeeded, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateURL(ctx, "race01", fmt.Sprintf("https://example.com/race/%d", i))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrDuplicateCode):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
}

func testConcurrentSameURL(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()
	const workers = 10

	var succeeded, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateURL(ctx, fmt.Sprintf("same%02d", i), "https://example.com/same-url")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrDuplicateURL):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())

	records, err := repo.ListURLs(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func testListURLs(t *testing.T, repo repository.URLRepository) {
	ctx := context.Background()

	records, err := repo.ListURLs(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateURL(ctx, fmt.Sprintf("list%02d", i), fmt.Sprintf("https://example.com/list/%d", i))
		require.NoError(t, err)
	}

	records, err = repo.ListURLs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "list02", records[0].Code)
	assert.Equal(t, "list01", records[1].Code)
	assert.Equal(t, "list00", records[2].Code)
}
