// Package cache is a keyed, time-bounded cache that serves stale values
// while a single background refresh runs.
//
// Per key the states are EMPTY, FRESH (age < ttl) and STALE (age >= ttl).
// EMPTY callers block on one shared fetch. FRESH callers get the cached
// value. STALE callers get the cached value immediately and at most one of
// them starts a background refresh; a failed refresh keeps the stale entry.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Bixxler/nextech/internal/debuglog"
)

// DefaultRefreshTimeout bounds a fetch that runs detached from its caller.
const DefaultRefreshTimeout = time.Minute

// FetchFunc loads a fresh value for a key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is a cached value with the time it was fetched.
type Result[T any] struct {
	Value     T
	FetchedAt time.Time
	// Stale is set when Value is past its ttl and a refresh was triggered.
	Stale bool
}

// PanicError wraps a value recovered from a panicking FetchFunc.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fetch panicked: %v", e.Value)
}

type entry[T any] struct {
	value      T
	fetchedAt  time.Time
	refreshing bool
}

// Cache holds one entry per key. The zero value is not usable; use New.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	group   singleflight.Group
	bg      sync.WaitGroup

	now            func() time.Time
	refreshTimeout time.Duration
	swr            bool
	observer       Observer
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now            func() time.Time
	refreshTimeout time.Duration
	swr            bool
	observer       Observer
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRefreshTimeout bounds each fetch. Non-positive values are ignored.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

// WithStaleWhileRevalidate toggles serving stale values. When off, a stale
// entry is refetched synchronously like an empty one.
func WithStaleWhileRevalidate(enabled bool) Option {
	return func(o *options) {
		o.swr = enabled
	}
}

// WithObserver reports hits, misses and refresh outcomes to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// New returns an empty Cache with stale-while-revalidate enabled.
func New[T any](opts ...Option) *Cache[T] {
	o := options{
		now:            time.Now,
		refreshTimeout: DefaultRefreshTimeout,
		swr:            true,
		observer:       NopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		entries:        make(map[string]*entry[T]),
		now:            o.now,
		refreshTimeout: o.refreshTimeout,
		swr:            o.swr,
		observer:       o.observer,
	}
}

// GetOrRefresh returns the value for key, fetching it when needed.
func (c *Cache[T]) GetOrRefresh(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	res, err := c.Lookup(ctx, key, ttl, fetch)
	return res.Value, err
}

// Lookup is GetOrRefresh with the entry's fetch time and staleness.
func (c *Cache[T]) Lookup(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[T]) (Result[T], error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.now().Sub(e.fetchedAt) < ttl {
			res := Result[T]{Value: e.value, FetchedAt: e.fetchedAt}
			c.mu.Unlock()
			c.observer.CacheHit(key)
			return res, nil
		}

		if c.swr {
			start := !e.refreshing
			e.refreshing = true
			res := Result[T]{Value: e.value, FetchedAt: e.fetchedAt, Stale: true}
			if start {
				c.bg.Add(1)
			}
			c.mu.Unlock()

			c.observer.CacheStale(key)
			if start {
				go func() {
					defer c.bg.Done()
					_, _, _ = c.group.Do(key, func() (interface{}, error) {
						return c.load(ctx, key, fetch)
					})
				}()
			}
			return res, nil
		}
	}
	c.mu.Unlock()

	c.observer.CacheMiss(key)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.load(ctx, key, fetch)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Result[T]{}, r.Err
		}
		return r.Val.(Result[T]), nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}

// load runs fetch on a context detached from the caller and stores the value
// on success. On failure the existing entry, if any, is left as it was.
func (c *Cache[T]) load(parent context.Context, key string, fetch FetchFunc[T]) (Result[T], error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.refreshTimeout)
	defer cancel()

	started := c.now()
	value, err := call(ctx, fetch)
	if err != nil {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			e.refreshing = false
		}
		c.mu.Unlock()

		debuglog.WithFields(map[string]interface{}{
			"key":   key,
			"error": err,
		}).Warnf("cache refresh failed")
		c.observer.RefreshFailed(key, err)
		return Result[T]{}, err
	}

	fetchedAt := c.now()
	c.mu.Lock()
	c.entries[key] = &entry[T]{value: value, fetchedAt: fetchedAt}
	c.mu.Unlock()

	elapsed := fetchedAt.Sub(started)
	debuglog.WithFields(map[string]interface{}{
		"key":      key,
		"duration": elapsed,
	}).Debugf("cache refreshed")
	c.observer.Refreshed(key, elapsed)

	return Result[T]{Value: value, FetchedAt: fetchedAt}, nil
}

func call[T any](ctx context.Context, fetch FetchFunc[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fetch(ctx)
}

// Invalidate drops the entry for key. An in-flight refresh may still store
// its result afterwards.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Wait blocks until background refreshes started so far have finished.
func (c *Cache[T]) Wait() {
	c.bg.Wait()
}
