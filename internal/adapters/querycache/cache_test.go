package querycache

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(clock *stubClock) *Cache {
	return New(Options{
		StaleTime:   time.Minute,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}, clock)
}

func TestQueryServesFreshEntryWithoutFetching(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		fetches.Add(1)
		return "v1", nil
	}

	first, err := Query(context.Background(), cache, "projects", fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", first)

	second, err := Query(context.Background(), cache, "projects", fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", second)
	assert.Equal(t, int64(1), fetches.Load())
}

func TestQueryRefetchesAfterStaleWindow(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	fetch := func(context.Context) (int, error) {
		return int(fetches.Add(1)), nil
	}

	first, err := Query(context.Background(), cache, "tasks:7", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	clock.Advance(2 * time.Minute)

	second, err := Query(context.Background(), cache, "tasks:7", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestConcurrentQueriesShareOneFetch(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		if fetches.Add(1) == 1 {
			close(started)
		}
		<-release
		return "shared", nil
	}

	const readers = 6
	results := make([]string, readers)
	errs := make([]error, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Query(context.Background(), cache, "projects", fetch)
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
	assert.Equal(t, int64(1), fetches.Load())
}

func TestQueryRetriesServerErrorsWithBackoff(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		if fetches.Add(1) < 3 {
			return "", &domain.APIError{StatusCode: http.StatusBadGateway}
		}
		return "recovered", nil
	}

	value, err := Query(context.Background(), cache, "projects", fetch)
	require.NoError(t, err)
	assert.Equal(t, "recovered", value)
	assert.Equal(t, int64(3), fetches.Load())
}

func TestQueryDoesNotRetryAuthorizationFailures(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		clock := &stubClock{now: time.Now()}
		cache := newTestCache(clock)

		var fetches atomic.Int64
		fetch := func(context.Context) (string, error) {
			fetches.Add(1)
			return "", &domain.APIError{StatusCode: status}
		}

		_, err := Query(context.Background(), cache, "projects", fetch)
		require.Error(t, err)
		assert.Equal(t, int64(1), fetches.Load(), "status %d", status)
	}
}

func TestQueryDoesNotRetryNetworkOrClientErrors(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	_, err := Query(context.Background(), cache, "a", func(context.Context) (string, error) {
		fetches.Add(1)
		return "", &domain.NetworkError{Op: "GET /projects", Err: errors.New("unreachable")}
	})
	require.Error(t, err)
	assert.Equal(t, int64(1), fetches.Load())

	fetches.Store(0)
	_, err = Query(context.Background(), cache, "b", func(context.Context) (string, error) {
		fetches.Add(1)
		return "", &domain.APIError{StatusCode: http.StatusNotFound}
	})
	require.Error(t, err)
	assert.Equal(t, int64(1), fetches.Load())
}

func TestAbandonedCallerStillPopulatesCache(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	release := make(chan struct{})
	done := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		defer close(done)
		<-release
		// The fetch context must survive the caller's cancellation.
		require.NoError(t, ctx.Err())
		return "late", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Query(ctx, cache, "projects", fetch)
		errCh <- err
	}()

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	<-done

	require.Eventually(t, func() bool {
		value, _, ok := cache.Peek("projects")
		return ok && value == "late"
	}, time.Second, 5*time.Millisecond)
}

func TestMutateInvalidatesOnlyOnSuccess(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)
	cache.Put("tasks:7", []string{"a"})
	cache.Put("tasks:8", []string{"b"})

	_, err := Mutate(context.Background(), cache, func(context.Context) (string, error) {
		return "", &domain.APIError{StatusCode: http.StatusUnprocessableEntity}
	}, "tasks:7")
	require.Error(t, err)

	_, fetchedAt, ok := cache.Peek("tasks:7")
	require.True(t, ok)
	assert.False(t, fetchedAt.IsZero(), "failed mutation must leave cache untouched")

	value, err := Mutate(context.Background(), cache, func(context.Context) (string, error) {
		return "created", nil
	}, "tasks:7")
	require.NoError(t, err)
	assert.Equal(t, "created", value)

	_, fetchedAt, ok = cache.Peek("tasks:7")
	require.True(t, ok)
	assert.True(t, fetchedAt.IsZero(), "successful mutation marks the key stale")

	_, fetchedAt, ok = cache.Peek("tasks:8")
	require.True(t, ok)
	assert.False(t, fetchedAt.IsZero(), "unrelated keys stay fresh")
}

func TestInvalidateAbsentKeyIsNoOp(t *testing.T) {
	t.Parallel()

	cache := newTestCache(&stubClock{now: time.Now()})
	cache.Invalidate("never-seen")
	assert.Zero(t, cache.Len())
}

func TestInvalidatedEntryRefetchesOnNextRead(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	fetch := func(context.Context) (int, error) {
		return int(fetches.Add(1)), nil
	}

	_, err := Query(context.Background(), cache, "project:1", fetch)
	require.NoError(t, err)

	cache.Invalidate("project:1")

	value, err := Query(context.Background(), cache, "project:1", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestPutOverwritesEntryDirectly(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Now()}
	cache := newTestCache(clock)

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		fetches.Add(1)
		return "fetched", nil
	}

	cache.Put("project:3", "pushed")

	value, err := Query(context.Background(), cache, "project:3", fetch)
	require.NoError(t, err)
	assert.Equal(t, "pushed", value)
	assert.Zero(t, fetches.Load())
}
