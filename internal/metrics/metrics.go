// Package metrics provides Prometheus metrics for nextech.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nextech"

// Cache event label values.
const (
	EventHit           = "hit"
	EventMiss          = "miss"
	EventStale         = "stale"
	EventRefreshed     = "refreshed"
	EventRefreshFailed = "refresh_failed"
)

// Metrics records item and cache events. It satisfies both
// hackernews.Observer and cache.Observer.
type Metrics struct {
	ItemFailures    prometheus.Counter
	CacheEvents     *prometheus.CounterVec
	RefreshDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg gets a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ItemFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_failures_total",
			Help:      "Total number of stories dropped because the item fetch failed",
		}),
		CacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Total number of cache lookups and refreshes by outcome",
		}, []string{"event"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_refresh_duration_seconds",
			Help:      "Duration of successful cache refreshes in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ItemFailed(int, error) {
	m.ItemFailures.Inc()
}

func (m *Metrics) CacheHit(string) {
	m.CacheEvents.WithLabelValues(EventHit).Inc()
}

func (m *Metrics) CacheMiss(string) {
	m.CacheEvents.WithLabelValues(EventMiss).Inc()
}

func (m *Metrics) CacheStale(string) {
	m.CacheEvents.WithLabelValues(EventStale).Inc()
}

func (m *Metrics) Refreshed(_ string, took time.Duration) {
	m.CacheEvents.WithLabelValues(EventRefreshed).Inc()
	m.RefreshDuration.Observe(took.Seconds())
}

func (m *Metrics) RefreshFailed(string, error) {
	m.CacheEvents.WithLabelValues(EventRefreshFailed).Inc()
}
