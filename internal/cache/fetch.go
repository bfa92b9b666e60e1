package cache

import (
	"context"
	"fmt"
	"time"
)

type fetchOptions struct {
	staleTime  *time.Duration
	serveStale bool
}

// FetchOption adjusts a single Fetch call.
type FetchOption func(*fetchOptions)

// StaleTime overrides the cache-wide freshness window for one query.
func StaleTime(d time.Duration) FetchOption {
	return func(o *fetchOptions) { o.staleTime = &d }
}

// ServeStale returns a stale value immediately and refreshes it in the
// background instead of waiting for the fetch.
func ServeStale() FetchOption {
	return func(o *fetchOptions) { o.serveStale = true }
}

// Fetch returns the value cached under key when it is fresh. Otherwise it
// runs fn, sharing one call between all concurrent callers of the same key,
// and stores the result. Callers arriving while that call is in flight get
// the stale value when there is one. A failed fn leaves the entry unchanged.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error), opts ...FetchOption) (T, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	v, err := c.fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, o)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: %s holds %T, want %T", key, v, zero)
	}
	return t, nil
}
