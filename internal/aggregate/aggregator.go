// Package aggregate fetches a batch of story IDs concurrently and returns
// the valid stories in title order.
package aggregate

import (
	"context"
	"sync"

	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/story"
)

// DefaultMaxConcurrency bounds in-flight item requests per batch.
const DefaultMaxConcurrency = 16

// ItemFetcher returns a story by ID, or false when it could not be fetched.
type ItemFetcher interface {
	Item(ctx context.Context, id int) (*story.Story, bool)
}

// Aggregator fans item fetches out over a bounded worker pool.
type Aggregator struct {
	fetcher        ItemFetcher
	maxConcurrency int
	sortMode       story.SortMode
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxConcurrency caps concurrent fetches. n <= 0 starts one worker per ID.
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) {
		a.maxConcurrency = n
	}
}

// WithSortMode selects the title ordering. The default is story.SortPlain.
func WithSortMode(mode story.SortMode) Option {
	return func(a *Aggregator) {
		a.sortMode = mode
	}
}

// New returns an Aggregator over fetcher with DefaultMaxConcurrency workers.
func New(fetcher ItemFetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:        fetcher,
		maxConcurrency: DefaultMaxConcurrency,
		sortMode:       story.SortPlain,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate fetches every ID, drops failed and invalid items and returns the
// rest sorted by title. It returns once every fetch has settled.
func (a *Aggregator) Aggregate(ctx context.Context, ids []int) []story.Story {
	if len(ids) == 0 {
		return []story.Story{}
	}

	unique := dedupe(ids)
	results := make([]*story.Story, len(unique))

	workers := a.maxConcurrency
	if workers <= 0 || workers > len(unique) {
		workers = len(unique)
	}

	// Each worker writes only to the slots of indexes it received, so
	// results needs no lock and keeps input order for the stable sort.
	indexes := make(chan int, len(unique))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if s, ok := a.fetcher.Item(ctx, unique[idx]); ok {
					results[idx] = s
				}
			}
		}()
	}

	for i := range unique {
		indexes <- i
	}
	close(indexes)

	wg.Wait()

	valid := make([]story.Story, 0, len(results))
	for _, s := range results {
		if s != nil && s.Valid() {
			valid = append(valid, *s)
		}
	}

	story.Sort(valid, a.sortMode)

	debuglog.WithFields(map[string]interface{}{
		"requested": len(ids),
		"valid":     len(valid),
		"dropped":   len(unique) - len(valid),
	}).Infof("aggregated stories")

	return valid
}

// dedupe keeps the first occurrence of each ID.
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
