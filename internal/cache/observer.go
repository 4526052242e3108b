package cache

import "time"

// Observer receives cache events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
	CacheStale(key string)
	Refreshed(key string, took time.Duration)
	RefreshFailed(key string, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) CacheHit(string)                 {}
func (NopObserver) CacheMiss(string)                {}
func (NopObserver) CacheStale(string)               {}
func (NopObserver) Refreshed(string, time.Duration) {}
func (NopObserver) RefreshFailed(string, error)     {}
