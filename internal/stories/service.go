// Package stories serves the sorted list of new stories behind a cache.
package stories

import (
	"context"
	"time"

	"github.com/Bixxler/nextech/internal/cache"
	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/story"
)

// CacheKey is the single cache entry holding the aggregated list.
const CacheKey = "stories"

// DefaultTTL is how long an aggregated list is served before a refresh.
const DefaultTTL = 5 * time.Minute

// IDLister returns the IDs of the newest stories.
type IDLister interface {
	NewStoryIDs(ctx context.Context) ([]int, error)
}

// Aggregator turns IDs into the sorted list of valid stories.
type Aggregator interface {
	Aggregate(ctx context.Context, ids []int) []story.Story
}

// Snapshot is one cached list with its fetch time.
type Snapshot struct {
	Stories   []story.Story
	FetchedAt time.Time
	Stale     bool
}

// Service answers story queries from the cache, fetching on demand.
type Service struct {
	lister IDLister
	agg    Aggregator
	cache  *cache.Cache[[]story.Story]
	ttl    time.Duration
}

// NewService wires the pipeline. A nil cache gets a default one and a
// non-positive ttl becomes DefaultTTL.
func NewService(lister IDLister, agg Aggregator, c *cache.Cache[[]story.Story], ttl time.Duration) *Service {
	if c == nil {
		c = cache.New[[]story.Story]()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		lister: lister,
		agg:    agg,
		cache:  c,
		ttl:    ttl,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// GetStories returns the cached list, fetching it when missing. Failures are
// *UpstreamError or *UnexpectedError. No valid stories is an empty slice and
// no error.
func (s *Service) GetStories(ctx context.Context) ([]story.Story, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Stories, nil
}

// Snapshot is GetStories with the fetch time and staleness of the list.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	res, err := s.cache.Lookup(ctx, CacheKey, s.ttl, s.fetch)
	if err != nil {
		err = classify(err)
		debuglog.WithError(err).Errorf("getting stories failed")
		return Snapshot{}, err
	}

	// the cached slice is shared across callers
	out := make([]story.Story, len(res.Value))
	copy(out, res.Value)

	return Snapshot{
		Stories:   out,
		FetchedAt: res.FetchedAt,
		Stale:     res.Stale,
	}, nil
}

// Wait blocks until background refreshes have finished.
func (s *Service) Wait() {
	s.cache.Wait()
}

func (s *Service) fetch(ctx context.Context) ([]story.Story, error) {
	ids, err := s.lister.NewStoryIDs(ctx)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	stories := s.agg.Aggregate(ctx, ids)
	if stories == nil {
		stories = []story.Story{}
	}
	return stories, nil
}
