package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Bixxler/nextech/internal/aggregate"
	"github.com/Bixxler/nextech/internal/cache"
	"github.com/Bixxler/nextech/internal/config"
	"github.com/Bixxler/nextech/internal/hackernews"
	"github.com/Bixxler/nextech/internal/metrics"
	"github.com/Bixxler/nextech/internal/search"
	"github.com/Bixxler/nextech/internal/stories"
	"github.com/Bixxler/nextech/internal/story"
)

// pipeline is the wired fetch, aggregate and cache chain.
type pipeline struct {
	service *stories.Service
	index   *search.Index
	metrics *metrics.Metrics
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	mode, err := story.ParseSortMode(cfg.Aggregate.SortMode)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	client := hackernews.NewClient(cfg.Upstream, hackernews.WithObserver(m))
	agg := aggregate.New(client,
		aggregate.WithMaxConcurrency(cfg.Aggregate.MaxConcurrency),
		aggregate.WithSortMode(mode),
	)
	c := cache.New[[]story.Story](
		cache.WithRefreshTimeout(cfg.Cache.RefreshTimeout),
		cache.WithStaleWhileRevalidate(cfg.Cache.StaleWhileRevalidate),
		cache.WithObserver(m),
	)

	index, err := search.NewIndex()
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	return &pipeline{
		service: stories.NewService(client, agg, c, cfg.Cache.TTL),
		index:   index,
		metrics: m,
	}, nil
}

func (p *pipeline) Close() error {
	return p.index.Close()
}
