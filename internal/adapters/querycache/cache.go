package querycache

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

const (
	defaultStaleTime   = 5 * time.Minute
	defaultGCTime      = 10 * time.Minute
	defaultMaxEntries  = 256
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 30 * time.Second
)

type Options struct {
	// StaleTime is the window during which a cached value is served without
	// touching the network.
	StaleTime time.Duration
	// GCTime is the inactivity window after which untouched entries are
	// dropped. Best effort, bounds memory only.
	GCTime      time.Duration
	MaxEntries  int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (o Options) withDefaults() Options {
	if o.StaleTime <= 0 {
		o.StaleTime = defaultStaleTime
	}
	if o.GCTime <= 0 {
		o.GCTime = defaultGCTime
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = defaultMaxEntries
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = defaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = defaultMaxDelay
	}
	return o
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a request-keyed cache of server-derived data. Entries are replaced
// atomically per key; concurrent reads of a stale key share one outstanding
// fetch, and an in-flight fetch outlives the caller that started it so the
// cache still gets populated when a view goes away mid-request.
type Cache struct {
	clock   ports.Clock
	opts    Options
	entries *lru.LRU[string, entry]
	group   singleflight.Group
}

var _ ports.Invalidator = (*Cache)(nil)

func New(opts Options, clock ports.Clock) *Cache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	opts = opts.withDefaults()

	return &Cache{
		clock:   clock,
		opts:    opts,
		entries: lru.NewLRU[string, entry](opts.MaxEntries, nil, opts.GCTime),
	}
}

// QueryOptions tune a single read; zero values fall back to the cache-wide
// configuration.
type QueryOptions struct {
	StaleTime time.Duration
}

// Query returns the cached value for key while it is fresh, otherwise fetches
// through fn, stores the result, and returns it. Concurrent callers for the
// same key share a single fetch.
func Query[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	return QueryWith(ctx, c, key, QueryOptions{}, fn)
}

func QueryWith[T any](ctx context.Context, c *Cache, key string, opts QueryOptions, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	staleTime := opts.StaleTime
	if staleTime <= 0 {
		staleTime = c.opts.StaleTime
	}

	if cached, ok := c.lookup(key, staleTime); ok {
		typed, ok := cached.(T)
		if ok {
			return typed, nil
		}
		// Type drift for a key means the caller mapping is wrong; refetch.
	}

	// The fetch runs detached from the caller's context so that cancellation
	// abandons the wait, not the fetch: the result still lands in the cache.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		value, err := c.fetchWithRetry(fetchCtx, func(ctx context.Context) (any, error) {
			fetched, err := fn(ctx)
			return fetched, err
		})
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return value, nil
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return zero, result.Err
		}
		typed, ok := result.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache entry %q holds %T", key, result.Val)
		}
		return typed, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Mutate executes a mutation and, only on success, applies the listed cache
// invalidations. A failed mutation leaves every entry untouched.
func Mutate[T any](ctx context.Context, c *Cache, run func(context.Context) (T, error), invalidates ...string) (T, error) {
	var zero T

	value, err := run(ctx)
	if err != nil {
		return zero, err
	}

	c.Invalidate(invalidates...)
	return value, nil
}

// Put overwrites the entry for key with a fresh value.
func (c *Cache) Put(key string, value any) {
	c.store(key, value)
}

// Invalidate marks keys stale so the next read refetches. Absent keys are
// no-ops; values stay readable by Peek until replaced or evicted.
func (c *Cache) Invalidate(keys ...string) {
	for _, key := range keys {
		cached, ok := c.entries.Get(key)
		if !ok {
			continue
		}
		cached.fetchedAt = time.Time{}
		c.entries.Add(key, cached)
	}
}

// InvalidatePrefix marks every key sharing prefix stale. List caches are
// keyed by resource name plus a filter hash, so realtime events that cannot
// know which filtered views exist invalidate by resource prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.Invalidate(key)
		}
	}
}

// Remove drops keys entirely, for resources deleted on the server.
func (c *Cache) Remove(keys ...string) {
	for _, key := range keys {
		c.entries.Remove(key)
	}
}

// Peek exposes the raw entry without affecting freshness, for status views
// and tests.
func (c *Cache) Peek(key string) (any, time.Time, bool) {
	cached, ok := c.entries.Peek(key)
	if !ok {
		return nil, time.Time{}, false
	}
	return cached.value, cached.fetchedAt, true
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) lookup(key string, staleTime time.Duration) (any, bool) {
	cached, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if cached.fetchedAt.IsZero() || c.clock.Now().Sub(cached.fetchedAt) >= staleTime {
		return nil, false
	}
	return cached.value, true
}

func (c *Cache) store(key string, value any) {
	c.entries.Add(key, entry{value: value, fetchedAt: c.clock.Now()})
}

// fetchWithRetry applies the read retry policy: bounded attempts with
// exponential backoff, except authorization failures, other 4xx statuses, and
// network-unreachable errors, which cannot succeed on a bare retry.
func (c *Cache) fetchWithRetry(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	var lastErr error

	for attempt := 0; attempt < c.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
	}

	return nil, lastErr
}

func (c *Cache) backoff(attempt int) time.Duration {
	delay := c.opts.BaseDelay << attempt
	if delay > c.opts.MaxDelay || delay <= 0 {
		return c.opts.MaxDelay
	}
	return delay
}

// retryable treats 5xx as transient; 4xx (auth included) and network
// failures fail fast.
func retryable(err error) bool {
	if domain.IsAuthorizationFailure(err) || domain.IsNetworkError(err) {
		return false
	}
	if status := domain.StatusCode(err); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return false
	}
	return true
}
